package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Roles carried in the token's role claim
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// RequireRole returns a middleware that lets only the given roles through.
// It must run after JWTMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("userId").(uint); !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		role, _ := c.Locals("role").(string)
		if _, ok := allowed[role]; !ok {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursesi/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret"}

	app := fiber.New()
	app.Get("/me", JWTMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("userId"), "role": c.Locals("role")})
	})
	app.Get("/admin", JWTMiddleware, RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestJWTMiddleware(t *testing.T) {
	app := newTestApp(t)

	token, err := GenerateJWT(42, "Ada", "user", "ada@example.com")
	require.NoError(t, err)

	status, body := call(t, app, "/me", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"user":42,"role":"USER"}`, body)

	status, _ = call(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "/me", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "/me", "Bearer not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTMiddlewareRejectsBadClaims(t *testing.T) {
	app := newTestApp(t)

	sign := func(claims jwt.MapClaims, key string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"wrong key":  sign(jwt.MapClaims{"userId": 1, "exp": exp}, "other-secret"),
		"expired":    sign(jwt.MapClaims{"userId": 1, "exp": time.Now().Add(-time.Hour).Unix()}, "test-secret"),
		"no user id": sign(jwt.MapClaims{"role": "ADMIN", "exp": exp}, "test-secret"),
		"zero user":  sign(jwt.MapClaims{"userId": 0, "exp": exp}, "test-secret"),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := call(t, app, "/me", "Bearer "+token)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Contains(t, body, `"status":false`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := newTestApp(t)

	admin, err := GenerateJWT(1, "Root", "ADMIN", "root@example.com")
	require.NoError(t, err)
	learner, err := GenerateJWT(2, "Ada", "USER", "ada@example.com")
	require.NoError(t, err)

	status, body := call(t, app, "/admin", "Bearer "+admin)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, _ = call(t, app, "/admin", "Bearer "+learner)
	assert.Equal(t, fiber.StatusForbidden, status)
}

package notificationValidator

import (
	"coursesi/middleware"

	"github.com/gofiber/fiber/v2"
)

// MaxLimit caps one page of notifications
const MaxLimit = 50

// ListQuery is the validated pagination of the notification list
type ListQuery struct {
	Page  int
	Limit int
}

// NotificationList validates ?page=&limit=; both are optional
func NotificationList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `query:"page"`
			Limit *int `query:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}

		errors := make(map[string]string)
		query := ListQuery{Page: 1, Limit: 20}

		// Validate Page
		if reqData.Page != nil {
			if *reqData.Page < 1 {
				errors["page"] = "Page must be greater than 0!"
			}
			query.Page = *reqData.Page
		}

		// Validate Limit
		if reqData.Limit != nil {
			if *reqData.Limit < 1 || *reqData.Limit > MaxLimit {
				errors["limit"] = "Limit must be between 1 and 50!"
			}
			query.Limit = *reqData.Limit
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedNotificationList", query)
		return c.Next()
	}
}

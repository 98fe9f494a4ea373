package notificationRoutes

import (
	controllers "coursesi/controllers/notification"
	"coursesi/middleware"
	validators "coursesi/validators/notification"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes sets up the in-app notification routes
func SetupNotificationRoutes(app *fiber.App, nc *controllers.NotificationController) {
	notificationGroup := app.Group("/notifications", middleware.JWTMiddleware)

	notificationGroup.Get("/", validators.NotificationList(), nc.GetNotifications)
	notificationGroup.Get("/unread-count", nc.GetUnreadCount)
	notificationGroup.Patch("/read-all", nc.MarkAllRead)
}

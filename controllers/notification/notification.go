package controllers

import (
	"coursesi/middleware"
	"coursesi/models"
	notificationValidator "coursesi/validators/notification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationController serves the learner's in-app notifications
type NotificationController struct {
	DB *gorm.DB
}

// GetNotifications returns one page of the user's notifications, newest first
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	query := c.Locals("validatedNotificationList").(notificationValidator.ListQuery)

	var notifications []models.Notification
	err := nc.DB.WithContext(c.UserContext()).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&notifications).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully!", fiber.Map{
		"notifications": notifications,
		"page":          query.Page,
		"limit":         query.Limit,
	})
}

// GetUnreadCount returns how many notifications the user has not read
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var count int64
	err := nc.DB.WithContext(c.UserContext()).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to count notifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread count fetched successfully!", fiber.Map{"count": count})
}

// MarkAllRead marks every notification of the user as read
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	res := nc.DB.WithContext(c.UserContext()).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update notifications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications marked as read!", fiber.Map{"updated": res.RowsAffected})
}

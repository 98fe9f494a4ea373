package controllers

import (
	"coursesi/middleware"
	"coursesi/services/quiz"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// RespondError maps a quiz service error onto the JSON envelope. Rejections
// carry their code in data so clients can branch without parsing messages.
func RespondError(c *fiber.Ctx, err error, fallback string) error {
	var rejection *quiz.RejectionError
	switch {
	case errors.As(err, &rejection):
		status := fiber.StatusBadRequest
		if errors.Is(err, quiz.ErrAlreadyCompleted) || errors.Is(err, quiz.ErrAlreadyPassed) {
			status = fiber.StatusConflict
		}
		return middleware.JsonResponse(c, status, false, rejection.Reason, fiber.Map{"code": rejection.Code})
	case errors.Is(err, quiz.ErrTransient):
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, err.Error(), fiber.Map{"code": "TRANSIENT"})
	case errors.Is(err, quiz.ErrInvalidDefinition):
		return middleware.ValidationErrorResponse(c, map[string]string{"definition": err.Error()})
	default:
		log.Printf("[QUIZ] %s %s: %v", c.Method(), c.Path(), err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
	}
}

package controllers

import (
	quizControllers "coursesi/controllers/quiz"
	"coursesi/middleware"
	"coursesi/models"
	"coursesi/services/quiz"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuizDefinitionController serves the admin quiz authoring endpoints
type QuizDefinitionController struct {
	Service *quiz.Service
	DB      *gorm.DB
}

// UpsertQuizDefinition creates or partially updates the quiz of a course
func (qc *QuizDefinitionController) UpsertQuizDefinition(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	reqData := c.Locals("validatedDefinition").(*quiz.DefinitionInput)

	var course models.Course
	if err := qc.DB.WithContext(c.UserContext()).Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	def, err := qc.Service.Definitions.Upsert(c.UserContext(), courseID, *reqData)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to save quiz!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz saved successfully!", def)
}

// GetQuizDefinition returns the quiz of a course including the answer key
func (qc *QuizDefinitionController) GetQuizDefinition(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	def, err := qc.Service.Definitions.Get(c.UserContext(), courseID)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to fetch quiz!")
	}
	if def == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", def)
}

// DeleteQuizDefinition removes the quiz of a course. Learner records are kept.
func (qc *QuizDefinitionController) DeleteQuizDefinition(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	deleted, err := qc.Service.Definitions.Delete(c.UserContext(), courseID)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to delete quiz!")
	}
	if !deleted {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

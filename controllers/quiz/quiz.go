package controllers

import (
	"coursesi/middleware"
	quizModels "coursesi/models/quiz"
	"coursesi/services/quiz"

	"github.com/gofiber/fiber/v2"
)

// QuizController serves the learner-facing quiz endpoints
type QuizController struct {
	Service *quiz.Service
	// ShufflePostTest randomises post-test question order in the quiz view
	ShufflePostTest bool
}

// GetQuizStatus returns the learner's pre and post records for a course
func (qc *QuizController) GetQuizStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	status, err := qc.Service.GetQuizStatus(c.UserContext(), userID, courseID)
	if err != nil {
		return RespondError(c, err, "Failed to fetch quiz status!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz status fetched successfully!", status)
}

// GetQuiz returns the questions of one quiz without the answer key
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	kind := c.Locals("quizKind").(quizModels.Kind)

	questions, err := qc.Service.QuizView(c.UserContext(), courseID, kind, qc.ShufflePostTest)
	if err != nil {
		return RespondError(c, err, "Failed to fetch quiz!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"kind":      kind,
		"questions": questions,
	})
}

// SubmitPreTest records the learner's one pre-test attempt
func (qc *QuizController) SubmitPreTest(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	answers := c.Locals("validatedAnswers").(quiz.SubmittedAnswers)

	result, err := qc.Service.SubmitPreTest(c.UserContext(), userID, courseID, answers)
	if err != nil {
		return RespondError(c, err, "Failed to submit pre-test!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pre-test submitted successfully!", result)
}

// SubmitPostTest records a post-test attempt and reports certificate issuance
func (qc *QuizController) SubmitPostTest(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)
	answers := c.Locals("validatedAnswers").(quiz.SubmittedAnswers)

	result, err := qc.Service.SubmitPostTest(c.UserContext(), userID, courseID, answers)
	if err != nil {
		return RespondError(c, err, "Failed to submit post-test!")
	}

	message := "Post-test submitted. Keep trying!"
	if result.Passed {
		message = "Post-test passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

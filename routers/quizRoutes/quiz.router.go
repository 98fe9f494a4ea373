package quizRoutes

import (
	controllers "coursesi/controllers/quiz"
	"coursesi/middleware"
	validators "coursesi/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes sets up the learner quiz routes
func SetupQuizRoutes(app *fiber.App, qc *controllers.QuizController) {
	quizGroup := app.Group("/course/:course_id/quiz", middleware.JWTMiddleware)

	quizGroup.Get("/status", validators.CourseParam(), qc.GetQuizStatus)
	quizGroup.Post("/pre", validators.SubmitAnswers(), qc.SubmitPreTest)
	quizGroup.Post("/post", validators.SubmitAnswers(), qc.SubmitPostTest)
	quizGroup.Get("/:kind", validators.QuizKind(), qc.GetQuiz)
}

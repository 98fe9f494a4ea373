package adminRoutes

import (
	adminControllers "coursesi/controllers/admin"
	certificateControllers "coursesi/controllers/certificate"
	"coursesi/middleware"
	validators "coursesi/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up quiz authoring and certificate administration
func SetupAdminRoutes(app *fiber.App, qc *adminControllers.QuizDefinitionController, cc *certificateControllers.CertificateController) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(middleware.RoleAdmin))

	// Quiz authoring
	adminGroup.Put("/course/:course_id/quiz", validators.UpsertDefinition(), qc.UpsertQuizDefinition)
	adminGroup.Get("/course/:course_id/quiz", validators.CourseParam(), qc.GetQuizDefinition)
	adminGroup.Delete("/course/:course_id/quiz", validators.CourseParam(), qc.DeleteQuizDefinition)

	// Certificates
	adminGroup.Post("/certificate/:course_id/:user_id/evaluate", validators.EvaluateCertificate(), cc.EvaluateCertificate)
	adminGroup.Post("/certificates/reconcile", validators.Reconcile(), cc.ReconcileCertificates)
}

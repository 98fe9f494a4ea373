package certificateRoutes

import (
	controllers "coursesi/controllers/certificate"
	"coursesi/middleware"
	validators "coursesi/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificateRoutes sets up the learner certificate routes
func SetupCertificateRoutes(app *fiber.App, cc *controllers.CertificateController) {
	app.Get("/certificates/:course_id/me", middleware.JWTMiddleware, validators.CourseParam(), cc.GetMyCertificate)
	app.Get("/user/certificates", middleware.JWTMiddleware, cc.GetMyCertificates)
}

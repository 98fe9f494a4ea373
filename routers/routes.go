package routers

import (
	adminControllers "coursesi/controllers/admin"
	certificateControllers "coursesi/controllers/certificate"
	notificationControllers "coursesi/controllers/notification"
	quizControllers "coursesi/controllers/quiz"
	"coursesi/routers/adminRoutes"
	"coursesi/routers/certificateRoutes"
	"coursesi/routers/notificationRoutes"
	"coursesi/routers/quizRoutes"
	"coursesi/services/quiz"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Options carries what the route groups need besides the app
type Options struct {
	DB              *gorm.DB
	Service         *quiz.Service
	ShufflePostTest bool
}

// SetupRoutes registers every route group of the service
func SetupRoutes(app *fiber.App, opts Options) {
	certificates := &certificateControllers.CertificateController{Service: opts.Service, DB: opts.DB}

	quizRoutes.SetupQuizRoutes(app, &quizControllers.QuizController{Service: opts.Service, ShufflePostTest: opts.ShufflePostTest})
	certificateRoutes.SetupCertificateRoutes(app, certificates)
	notificationRoutes.SetupNotificationRoutes(app, &notificationControllers.NotificationController{DB: opts.DB})
	adminRoutes.SetupAdminRoutes(app, &adminControllers.QuizDefinitionController{Service: opts.Service, DB: opts.DB}, certificates)
}

package controllers

import (
	quizControllers "coursesi/controllers/quiz"
	"coursesi/middleware"
	"coursesi/models"
	quizModels "coursesi/models/quiz"
	"coursesi/services/quiz"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CertificateController serves certificate queries and the admin issuance endpoints
type CertificateController struct {
	Service *quiz.Service
	DB      *gorm.DB
}

// CertificateWithCourse is a certificate decorated with its course title
type CertificateWithCourse struct {
	quizModels.Certificate
	CourseName string `json:"course_name"`
}

// GetMyCertificate returns the learner's certificate for one course
func (cc *CertificateController) GetMyCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	cert, err := cc.Service.GetCertificate(c.UserContext(), userID, courseID)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to fetch certificate!")
	}
	if cert == nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not issued yet!", fiber.Map{
			"has_certificate": false,
		})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", fiber.Map{
		"has_certificate": true,
		"certificate":     cert,
	})
}

// GetMyCertificates lists every certificate of the learner, newest first
func (cc *CertificateController) GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certificates, err := cc.Service.Issuer.List(c.UserContext(), userID)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to fetch certificates!")
	}

	courseIDs := make([]uint, 0, len(certificates))
	for _, cert := range certificates {
		courseIDs = append(courseIDs, cert.CourseID)
	}
	titles := make(map[uint]string, len(courseIDs))
	if len(courseIDs) > 0 {
		var courses []models.Course
		if err := cc.DB.WithContext(c.UserContext()).Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			log.Printf("[CERTIFICATE] course titles for user=%d: %v", userID, err)
		}
		for _, course := range courses {
			titles[course.ID] = course.Title
		}
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		result[i] = CertificateWithCourse{Certificate: cert, CourseName: titles[cert.CourseID]}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
	})
}

// EvaluateCertificate re-runs the eligibility check for one learner and course
func (cc *CertificateController) EvaluateCertificate(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	userID := c.Locals("targetUserID").(uint)

	cert, err := cc.Service.Issuer.IssueIfEligible(c.UserContext(), userID, courseID)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to evaluate certificate!")
	}
	if cert == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Learner is not eligible for a certificate yet!", fiber.Map{
			"eligible": false,
		})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate issued successfully!", fiber.Map{
		"eligible":    true,
		"certificate": cert,
	})
}

// ReconcileCertificates runs the issuer over every passed post-test
func (cc *CertificateController) ReconcileCertificates(c *fiber.Ctx) error {
	since := c.Locals("reconcileSince").(time.Time)

	report, err := cc.Service.Reconcile(c.UserContext(), since)
	if err != nil {
		return quizControllers.RespondError(c, err, "Failed to reconcile certificates!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates reconciled successfully!", report)
}

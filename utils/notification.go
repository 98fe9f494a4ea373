package utils

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coursesi/config"
	"coursesi/models"
	"coursesi/services/quiz"

	"gorm.io/gorm"
)

// CertificateDispatcher fans certificate events out to the learner and to
// external subscribers. A first issuance writes an in-app notification and
// sends an email; every event is posted to the webhook. Mailer and Webhook
// are optional.
type CertificateDispatcher struct {
	DB      *gorm.DB
	Mailer  EmailSender
	Webhook *WebhookClient
}

// NewCertificateDispatcher wires the channels enabled in the configuration
func NewCertificateDispatcher(db *gorm.DB, cfg *config.Config) *CertificateDispatcher {
	d := &CertificateDispatcher{DB: db}
	if cfg.SendGridAPIKey != "" && cfg.EmailSender != "" {
		d.Mailer = NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName)
	}
	if cfg.CertificateWebhookURL != "" {
		d.Webhook = NewWebhookClient(cfg.CertificateWebhookURL)
	}
	return d
}

// Publish implements quiz.Publisher
func (d *CertificateDispatcher) Publish(ctx context.Context, event quiz.CertificateEvent) error {
	cert := event.Certificate
	var errs []error

	if !event.Refreshed {
		var course models.Course
		courseName := fmt.Sprintf("course #%d", cert.CourseID)
		if err := d.DB.WithContext(ctx).Where("id = ?", cert.CourseID).First(&course).Error; err == nil && course.Title != "" {
			courseName = course.Title
		}

		notification := models.Notification{
			UserID:  cert.UserID,
			Title:   "Certificate issued",
			Message: fmt.Sprintf("You earned the certificate for %s (%s).", courseName, cert.CertificateCode),
			Link:    fmt.Sprintf("/certificates/%d", cert.CourseID),
			Type:    models.NotificationCertificate,
		}
		if err := d.DB.WithContext(ctx).Create(&notification).Error; err != nil {
			errs = append(errs, fmt.Errorf("notification: %w", err))
		}

		if d.Mailer != nil {
			if err := d.sendEmail(ctx, cert.UserID, courseName, event); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if d.Webhook != nil {
		name := EventCertificateIssued
		if event.Refreshed {
			name = EventCertificateRefreshed
		}
		payload := CertificateWebhookPayload{
			Event:               name,
			CertificateID:       cert.ID,
			CertificateCode:     cert.CertificateCode,
			UserID:              cert.UserID,
			CourseID:            cert.CourseID,
			OrderID:             cert.OrderID,
			PreTestScore:        cert.PreTestScore,
			PreTestTotal:        cert.PreTestTotal,
			PostTestScore:       cert.PostTestScore,
			PostTestTotal:       cert.PostTestTotal,
			PassingScorePercent: cert.PassingScorePercent,
			IssuedAt:            cert.IssuedAt,
		}
		if err := d.Webhook.PostCertificateEvent(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		log.Printf("[NOTIFY] certificate %s: %d delivery failure(s)", cert.CertificateCode, len(errs))
	}
	return errors.Join(errs...)
}

func (d *CertificateDispatcher) sendEmail(ctx context.Context, userID uint, courseName string, event quiz.CertificateEvent) error {
	var user models.User
	if err := d.DB.WithContext(ctx).Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return fmt.Errorf("email: load user %d: %w", userID, err)
	}

	cert := event.Certificate
	subject, body := CertificateIssuedEmail(user.FullName(), courseName, cert.CertificateCode, cert.PostTestScore, cert.PostTestTotal)
	if err := d.Mailer.SendEmail(ctx, user.Email, user.FullName(), subject, body); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

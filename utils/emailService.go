package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers one HTML email
type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, htmlBody string) error
}

// SendGridMailer sends email through the SendGrid v3 API
type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m *SendGridMailer) SendEmail(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, subject, htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}

	log.Printf("[EMAIL] %q sent to %s", subject, toEmail)
	return nil
}

// getEmailTemplate wraps a body in the platform's email layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E3A5F; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4CAF50; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>COURSESI</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; 2026 CourseSi. All rights reserved.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// CertificateIssuedEmail builds the subject and body sent on first issuance
func CertificateIssuedEmail(userName, courseName, certificateCode string, postScore, postTotal int) (string, string) {
	subject := "Your certificate for " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong> with a final score of %d/%d.</p>
		<div class="info-box">
			<strong>Certificate code:</strong> %s
		</div>
		<p>You can download your certificate from the course page at any time.</p>
	`, userName, courseName, postScore, postTotal, certificateCode)

	return subject, getEmailTemplate("Certificate of Completion", body)
}

package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Webhook event names
const (
	EventCertificateIssued    = "certificate.issued"
	EventCertificateRefreshed = "certificate.refreshed"
)

// CertificateWebhookPayload is posted to the configured subscriber
type CertificateWebhookPayload struct {
	Event               string    `json:"event"`
	CertificateID       uint      `json:"certificate_id"`
	CertificateCode     string    `json:"certificate_code"`
	UserID              uint      `json:"user_id"`
	CourseID            uint      `json:"course_id"`
	OrderID             uint      `json:"order_id"`
	PreTestScore        int       `json:"pre_test_score"`
	PreTestTotal        int       `json:"pre_test_total"`
	PostTestScore       int       `json:"post_test_score"`
	PostTestTotal       int       `json:"post_test_total"`
	PassingScorePercent int       `json:"passing_score_percent"`
	IssuedAt            time.Time `json:"issued_at"`
}

// WebhookClient posts certificate events to an external URL
type WebhookClient struct {
	client *resty.Client
	url    string
}

func NewWebhookClient(url string) *WebhookClient {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &WebhookClient{client: client, url: url}
}

// PostCertificateEvent delivers one event; any non-2xx answer is an error
func (w *WebhookClient) PostCertificateEvent(ctx context.Context, payload CertificateWebhookPayload) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", payload.Event, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: status %d: %s", payload.Event, resp.StatusCode(), resp.String())
	}
	return nil
}

package utils

import (
	"context"
	"log"
	"time"

	"coursesi/services/quiz"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// ReconcileWindow is the start of the look-back window of a scheduled run:
// the beginning of the previous day, so a nightly run also covers records
// touched late the day before.
func ReconcileWindow(at time.Time) time.Time {
	return now.With(at).BeginningOfDay().AddDate(0, 0, -1)
}

// RunCertificateReconciliation reconciles every passed post-test changed
// since the window start, plus every one still missing a certificate.
func RunCertificateReconciliation(ctx context.Context, svc *quiz.Service, at time.Time) (quiz.ReconcileReport, error) {
	since := ReconcileWindow(at)
	log.Printf("[RECONCILE-SCHEDULER] Running certificate reconciliation since %s", since.Format(time.RFC3339))

	report, err := svc.Reconcile(ctx, since)
	if err != nil {
		log.Printf("[RECONCILE-SCHEDULER] Reconciliation failed: %v", err)
		return report, err
	}

	log.Printf("[RECONCILE-SCHEDULER] checked=%d issued=%d refreshed=%d skipped=%d failed=%d", report.Checked, report.Issued, report.Refreshed, report.Skipped, report.Failed)
	return report, nil
}

// InitializeCertificateScheduler starts the reconciliation cron job. The
// caller stops the returned scheduler on shutdown.
func InitializeCertificateScheduler(svc *quiz.Service, schedule string) (*cron.Cron, error) {
	log.Println("[RECONCILE-SCHEDULER] Initializing certificate scheduler...")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		RunCertificateReconciliation(context.Background(), svc, time.Now())
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[RECONCILE-SCHEDULER] Certificate scheduler started with schedule %q", schedule)
	return c, nil
}

package quiz

import (
	"context"
	"log"
	"time"
)

// ReconcileReport summarises one reconciliation run
type ReconcileReport struct {
	Checked   int `json:"checked"`
	Issued    int `json:"issued"`
	Refreshed int `json:"refreshed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Reconcile re-runs the issuer for passed post-tests that have no certificate
// or changed since the given time. It catches learners who paid after
// passing and refreshes snapshots after threshold edits.
func (s *Service) Reconcile(ctx context.Context, since time.Time) (ReconcileReport, error) {
	var report ReconcileReport

	recs, err := s.Ledger.ListReconcilable(ctx, since)
	if err != nil {
		return report, err
	}

	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		cert, created, err := s.Issuer.issue(ctx, rec.UserID, rec.CourseID)
		switch {
		case err != nil:
			report.Failed++
			log.Printf("[RECONCILE] user=%d course=%d: %v", rec.UserID, rec.CourseID, err)
		case cert == nil:
			report.Skipped++
		case created:
			report.Issued++
		default:
			report.Refreshed++
		}
	}
	return report, nil
}

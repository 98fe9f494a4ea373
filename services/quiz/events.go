package quiz

import (
	"context"

	quizModels "coursesi/models/quiz"
)

// CertificateEvent is published after every successful issuance. Refreshed is
// true when an existing certificate only had its snapshot updated.
type CertificateEvent struct {
	Certificate quizModels.Certificate
	Refreshed   bool
}

// Publisher receives issuance events. Failures are logged by the issuer and
// never fail the issuance itself.
type Publisher interface {
	Publish(ctx context.Context, event CertificateEvent) error
}

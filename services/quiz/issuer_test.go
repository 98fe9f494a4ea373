package quiz

import (
	"context"
	"testing"
	"time"

	"coursesi/models"
	quizModels "coursesi/models/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passBoth records a pre-test and a passing post-test directly in the ledger
func (f *fixture) passBoth(t *testing.T, userID, courseID uint, preScore, postScore, postTotal int) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Ledger.RecordAttempt(ctx, AttemptInput{UserID: userID, CourseID: courseID, Kind: quizModels.KindPre, Score: preScore, Total: 5}, nil)
	require.NoError(t, err)
	_, err = f.svc.Ledger.RecordAttempt(ctx, AttemptInput{UserID: userID, CourseID: courseID, Kind: quizModels.KindPost, Score: postScore, Total: postTotal, Passed: true}, nil)
	require.NoError(t, err)
}

func TestCertificateCode(t *testing.T) {
	at := time.Unix(0, 36)
	assert.Equal(t, "CERT-2345-10", CertificateCode(12345, at))
	assert.Equal(t, "CERT-0007-10", CertificateCode(7, at))
	assert.NotEqual(t, CertificateCode(7, at), CertificateCode(7, at.Add(time.Nanosecond)))
}

func TestIssueIfEligibleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDefinition(t, 3, 5, 10, 70, true)
	order := f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
	f.passBoth(t, 1, 3, 3, 8, 10)

	first, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, order.ID, first.OrderID)
	assert.Equal(t, 3, first.PreTestScore)
	assert.Equal(t, 5, first.PreTestTotal)
	assert.Equal(t, 8, first.PostTestScore)
	assert.Equal(t, 10, first.PostTestTotal)
	assert.Equal(t, 70, first.PassingScorePercent)
	assert.Contains(t, first.CertificateCode, "CERT-0003-")

	second, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateCode, second.CertificateCode)
	assert.True(t, second.IssuedAt.After(first.IssuedAt))
	assert.Equal(t, int64(1), f.certificateCount(t, 1, 3))

	f.svc.Issuer.Wait()
	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.False(t, events[0].Refreshed)
	assert.True(t, events[1].Refreshed)
	assert.Equal(t, first.CertificateCode, events[1].Certificate.CertificateCode)
}

func TestIssueIfEligibleRefreshesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	def := f.seedDefinition(t, 3, 5, 10, 70, true)
	f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
	f.passBoth(t, 1, 3, 2, 7, 10)

	first, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(def).Update("passing_score_percent", 60).Error)
	refreshed, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, first.CertificateCode, refreshed.CertificateCode)
	assert.Equal(t, 60, refreshed.PassingScorePercent)
}

func TestIssueIfEligibleConditions(t *testing.T) {
	ctx := context.Background()

	t.Run("no order", func(t *testing.T) {
		f := newFixture(t)
		f.seedDefinition(t, 3, 5, 10, 70, true)
		f.passBoth(t, 1, 3, 3, 8, 10)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
	})

	t.Run("order not paid", func(t *testing.T) {
		f := newFixture(t)
		f.seedDefinition(t, 3, 5, 10, 70, true)
		f.seedOrder(t, 1, 3, models.PaymentPending, f.clock.Now())
		f.seedOrder(t, 1, 3, models.PaymentRefunded, f.clock.Now())
		f.passBoth(t, 1, 3, 3, 8, 10)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
	})

	t.Run("paid order for another course", func(t *testing.T) {
		f := newFixture(t)
		f.seedDefinition(t, 3, 5, 10, 70, true)
		f.seedOrder(t, 1, 4, models.PaymentPaid, f.clock.Now())
		f.passBoth(t, 1, 3, 3, 8, 10)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
	})

	t.Run("no pre-test record", func(t *testing.T) {
		f := newFixture(t)
		f.seedDefinition(t, 3, 5, 10, 70, false)
		f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
		_, err := f.svc.Ledger.RecordAttempt(ctx, AttemptInput{UserID: 1, CourseID: 3, Kind: quizModels.KindPost, Score: 9, Total: 10, Passed: true}, nil)
		require.NoError(t, err)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
	})

	t.Run("post-test not passed", func(t *testing.T) {
		f := newFixture(t)
		f.seedDefinition(t, 3, 5, 10, 70, true)
		f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
		_, err := f.svc.Ledger.RecordAttempt(ctx, AttemptInput{UserID: 1, CourseID: 3, Kind: quizModels.KindPre, Score: 1, Total: 5}, nil)
		require.NoError(t, err)
		_, err = f.svc.Ledger.RecordAttempt(ctx, AttemptInput{UserID: 1, CourseID: 3, Kind: quizModels.KindPost, Score: 4, Total: 10}, nil)
		require.NoError(t, err)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
	})

	t.Run("threshold raised after passing", func(t *testing.T) {
		f := newFixture(t)
		def := f.seedDefinition(t, 3, 5, 10, 70, true)
		f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
		f.passBoth(t, 1, 3, 3, 8, 10)
		require.NoError(t, f.db.Model(def).Update("passing_score_percent", 90).Error)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		assert.Nil(t, cert)
		assert.Equal(t, int64(0), f.certificateCount(t, 1, 3))
	})

	t.Run("no definition falls back to default percent", func(t *testing.T) {
		f := newFixture(t)
		f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
		f.passBoth(t, 1, 3, 3, 7, 10)

		cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
		require.NoError(t, err)
		require.NotNil(t, cert)
		assert.Equal(t, 70, cert.PassingScorePercent)
	})
}

func TestIssueIfEligiblePicksEarliestPaidOrder(t *testing.T) {
	f := newFixture(t)
	f.seedDefinition(t, 3, 5, 10, 70, true)
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	f.seedOrder(t, 1, 3, models.PaymentPaid, base.AddDate(0, 1, 0))
	earliest := f.seedOrder(t, 1, 3, models.PaymentPaid, base)
	f.seedOrder(t, 1, 3, models.PaymentPending, base.AddDate(0, -1, 0))
	f.passBoth(t, 1, 3, 3, 8, 10)

	cert, err := f.svc.Issuer.IssueIfEligible(context.Background(), 1, 3)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Equal(t, earliest.ID, cert.OrderID)
}

func TestIssueIfEligibleRetriesCodeCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDefinition(t, 3, 5, 10, 70, true)
	f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
	f.passBoth(t, 1, 3, 3, 8, 10)
	require.NoError(t, f.db.Create(&quizModels.Certificate{UserID: 99, CourseID: 3, CertificateCode: "CERT-TAKEN"}).Error)

	codes := []string{"CERT-TAKEN", "CERT-FRESH"}
	f.svc.Issuer.newCode = func(uint) string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "CERT-FRESH", cert.CertificateCode)
}

func TestIssueIfEligibleSurfacesTransientOnRepeatedCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDefinition(t, 3, 5, 10, 70, true)
	f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
	f.passBoth(t, 1, 3, 3, 8, 10)
	require.NoError(t, f.db.Create(&quizModels.Certificate{UserID: 99, CourseID: 3, CertificateCode: "CERT-TAKEN"}).Error)
	f.svc.Issuer.newCode = func(uint) string { return "CERT-TAKEN" }

	cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrTransient)
	assert.Nil(t, cert)
	f.svc.Issuer.Wait()
	assert.Empty(t, f.publisher.Events())
}

func TestIssueIfEligibleKeepsConcurrentlyIssuedCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedDefinition(t, 3, 5, 10, 70, true)
	order := f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())
	f.passBoth(t, 1, 3, 3, 8, 10)

	// another issuer wins the race for the same learner and course
	inserted := 0
	f.svc.Issuer.beforeInsert = func(ctx context.Context, userID, courseID uint) {
		if inserted > 0 {
			return
		}
		inserted++
		require.NoError(t, f.db.WithContext(ctx).Create(&quizModels.Certificate{
			UserID:          userID,
			CourseID:        courseID,
			CertificateCode: "CERT-THEIRS",
			IssuedAt:        f.clock.Now(),
		}).Error)
	}

	cert, err := f.svc.Issuer.IssueIfEligible(ctx, 1, 3)
	require.NoError(t, err)
	require.NotNil(t, cert)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, int64(1), f.certificateCount(t, 1, 3))
	assert.Equal(t, "CERT-THEIRS", cert.CertificateCode)
	assert.Equal(t, order.ID, cert.OrderID)
	assert.Equal(t, 8, cert.PostTestScore)
	assert.Equal(t, 10, cert.PostTestTotal)
	assert.Equal(t, 70, cert.PassingScorePercent)

	stored, err := f.svc.Issuer.Get(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "CERT-THEIRS", stored.CertificateCode)
	assert.Equal(t, 8, stored.PostTestScore)

	f.svc.Issuer.Wait()
	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Refreshed)
}

// blockingPublisher holds every publish until release is closed
type blockingPublisher struct {
	release chan struct{}
	done    chan error
}

func (p *blockingPublisher) Publish(ctx context.Context, _ CertificateEvent) error {
	<-p.release
	p.done <- ctx.Err()
	return nil
}

func TestSubmitPostTestDoesNotWaitForPublisher(t *testing.T) {
	f := newFixture(t)
	pub := &blockingPublisher{release: make(chan struct{}), done: make(chan error, 1)}
	svc := NewService(f.db, Options{DefaultPassingPercent: 70, Publisher: pub, Now: f.clock.Now})
	def := f.seedDefinition(t, 3, 5, 10, 70, true)
	f.seedOrder(t, 1, 3, models.PaymentPaid, f.clock.Now())

	reqCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := svc.SubmitPreTest(reqCtx, 1, 3, answersFor(def.PreTest, 3))
	require.NoError(t, err)

	start := time.Now()
	post, err := svc.SubmitPostTest(reqCtx, 1, 3, answersFor(def.PostTest, 8))
	require.NoError(t, err)
	assert.True(t, post.CertificateIssued)
	assert.Less(t, time.Since(start), time.Second)

	// delivery outlives the request
	cancel()
	close(pub.release)
	select {
	case err := <-pub.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publisher never ran")
	}
	svc.Issuer.Wait()
}

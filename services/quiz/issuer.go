package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	quizModels "coursesi/models/quiz"

	"gorm.io/gorm"
)

// CertificateCode builds "CERT-<last 4 digits of course id>-<base36 nanos>".
// Uniqueness is enforced by the certificate_code index, not by construction.
func CertificateCode(courseID uint, at time.Time) string {
	return fmt.Sprintf("CERT-%04d-%s", courseID%10000, strings.ToUpper(strconv.FormatInt(at.UnixNano(), 36)))
}

// Issuer decides certificate eligibility and mints or refreshes certificates
type Issuer struct {
	db          *gorm.DB
	ledger      *Ledger
	definitions *DefinitionStore
	orders      OrderReader
	publisher   Publisher
	now         func() time.Time
	newCode     func(courseID uint) string
	// beforeInsert runs between the lookup that found no certificate and the
	// insert; nil in production
	beforeInsert func(ctx context.Context, userID, courseID uint)
	// pending tracks in-flight publishes
	pending sync.WaitGroup
}

func NewIssuer(db *gorm.DB, ledger *Ledger, definitions *DefinitionStore, orders OrderReader, publisher Publisher, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	i := &Issuer{
		db:          db,
		ledger:      ledger,
		definitions: definitions,
		orders:      orders,
		publisher:   publisher,
		now:         now,
	}
	i.newCode = func(courseID uint) string { return CertificateCode(courseID, i.now()) }
	return i
}

// Get returns nil when the learner holds no certificate for the course
func (i *Issuer) Get(ctx context.Context, userID, courseID uint) (*quizModels.Certificate, error) {
	var cert quizModels.Certificate
	err := i.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// List returns every certificate of a learner, newest first
func (i *Issuer) List(ctx context.Context, userID uint) ([]quizModels.Certificate, error) {
	var certs []quizModels.Certificate
	err := i.db.WithContext(ctx).Where("user_id = ?", userID).Order("issued_at desc").Find(&certs).Error
	return certs, err
}

// IssueIfEligible mints the certificate of a (user, course) pair, or refreshes
// the snapshot of an existing one, when every condition holds: a paid order, a
// pre-test record, a passed post-test record, and a best post-test score that
// still meets the course's current passing percent. An ineligible pair yields
// (nil, nil). Subscribers are notified in the background.
func (i *Issuer) IssueIfEligible(ctx context.Context, userID, courseID uint) (*quizModels.Certificate, error) {
	cert, _, err := i.issue(ctx, userID, courseID)
	return cert, err
}

// Wait blocks until every background publish has returned
func (i *Issuer) Wait() {
	i.pending.Wait()
}

// issue is IssueIfEligible that also reports whether the certificate is new
func (i *Issuer) issue(ctx context.Context, userID, courseID uint) (*quizModels.Certificate, bool, error) {
	snapshot, err := i.evaluate(ctx, userID, courseID)
	if err != nil || snapshot == nil {
		return nil, false, err
	}

	var (
		cert    *quizModels.Certificate
		created bool
	)
	for attempt := 0; ; attempt++ {
		cert, created, err = i.upsert(ctx, *snapshot)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		if attempt >= conflictRetries {
			return nil, false, ErrTransient
		}
		log.Printf("[CERTIFICATE] unique conflict user=%d course=%d, retrying", userID, courseID)
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		log.Printf("[CERTIFICATE] issued %s to user=%d course=%d", cert.CertificateCode, userID, courseID)
	}
	i.publish(ctx, CertificateEvent{Certificate: *cert, Refreshed: !created})
	return cert, created, nil
}

// publish hands the event to the publisher without holding up the caller. The
// publisher outlives the request, so it gets a context that is never cancelled.
func (i *Issuer) publish(ctx context.Context, event CertificateEvent) {
	if i.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	i.pending.Add(1)
	go func() {
		defer i.pending.Done()
		if err := i.publisher.Publish(ctx, event); err != nil {
			log.Printf("[CERTIFICATE] publish %s failed: %v", event.Certificate.CertificateCode, err)
		}
	}()
}

func (i *Issuer) evaluate(ctx context.Context, userID, courseID uint) (*quizModels.Certificate, error) {
	order, err := i.orders.EarliestPaidOrder(ctx, userID, courseID)
	if err != nil || order == nil {
		return nil, err
	}

	pre, err := i.ledger.Get(ctx, userID, courseID, quizModels.KindPre)
	if err != nil || pre == nil {
		return nil, err
	}
	post, err := i.ledger.Get(ctx, userID, courseID, quizModels.KindPost)
	if err != nil || post == nil || !post.Passed {
		return nil, err
	}

	def, err := i.definitions.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	percent := i.definitions.PassingPercent(def)
	if !MeetsPercent(post.BestScore, post.Total, percent) {
		return nil, nil
	}

	return &quizModels.Certificate{
		UserID:              userID,
		CourseID:            courseID,
		OrderID:             order.ID,
		PreTestScore:        pre.LastScore,
		PreTestTotal:        pre.Total,
		PostTestScore:       post.BestScore,
		PostTestTotal:       post.Total,
		PassingScorePercent: percent,
		IssuedAt:            i.now(),
	}, nil
}

// upsert refreshes the snapshot of an existing certificate or inserts a new
// one. gorm.ErrDuplicatedKey means another writer issued the pair first or the
// generated code collided; the caller retries and the next read decides.
func (i *Issuer) upsert(ctx context.Context, snapshot quizModels.Certificate) (*quizModels.Certificate, bool, error) {
	db := i.db.WithContext(ctx)

	var existing quizModels.Certificate
	err := db.Where("user_id = ? AND course_id = ?", snapshot.UserID, snapshot.CourseID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if i.beforeInsert != nil {
			i.beforeInsert(ctx, snapshot.UserID, snapshot.CourseID)
		}
		cert := snapshot
		cert.CertificateCode = i.newCode(snapshot.CourseID)
		if err := db.Create(&cert).Error; err != nil {
			return nil, false, err
		}
		return &cert, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	err = db.Model(&quizModels.Certificate{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"order_id":              snapshot.OrderID,
			"pre_test_score":        snapshot.PreTestScore,
			"pre_test_total":        snapshot.PreTestTotal,
			"post_test_score":       snapshot.PostTestScore,
			"post_test_total":       snapshot.PostTestTotal,
			"passing_score_percent": snapshot.PassingScorePercent,
			"issued_at":             snapshot.IssuedAt,
		}).Error
	if err != nil {
		return nil, false, err
	}

	if err := db.First(&existing, existing.ID).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

package quiz

import (
	"context"
	"errors"
	"log"
	"time"

	quizModels "coursesi/models/quiz"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// conflictRetries is how many times a write that lost a race is re-read and
// re-applied before ErrTransient is returned.
const conflictRetries = 1

var errVersionConflict = errors.New("submission record version conflict")

// AttemptInput is one scored attempt to append to the ledger
type AttemptInput struct {
	UserID   uint
	CourseID uint
	Kind     quizModels.Kind
	Score    int
	Total    int
	// Passed is this attempt's own outcome; the record keeps it sticky
	Passed  bool
	Answers datatypes.JSON
}

// AttemptGuard inspects the current record (nil before the first attempt)
// inside the write transaction and may veto the attempt.
type AttemptGuard func(existing *quizModels.SubmissionRecord) error

// Ledger stores submission records keyed by (user, course, kind). Writes use
// optimistic concurrency on SubmissionRecord.Version so concurrent attempts
// never lose an increment.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{db: db, now: now}
}

// Get returns nil when the learner has no record for the quiz
func (l *Ledger) Get(ctx context.Context, userID, courseID uint, kind quizModels.Kind) (*quizModels.SubmissionRecord, error) {
	var rec quizModels.SubmissionRecord
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND kind = ?", userID, courseID, kind).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetWithAttempts is Get with the attempt log loaded in submission order
func (l *Ledger) GetWithAttempts(ctx context.Context, userID, courseID uint, kind quizModels.Kind) (*quizModels.SubmissionRecord, error) {
	var rec quizModels.SubmissionRecord
	err := l.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ? AND course_id = ? AND kind = ?", userID, courseID, kind).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordAttempt upserts the record and appends the attempt in one
// transaction. A lost race is retried once; a second loss returns
// ErrTransient. Errors from guard are returned unchanged and nothing is
// written.
func (l *Ledger) RecordAttempt(ctx context.Context, in AttemptInput, guard AttemptGuard) (*quizModels.SubmissionRecord, error) {
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		rec, err := l.tryRecord(ctx, in, guard)
		if errors.Is(err, errVersionConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("[QUIZ] ledger conflict user=%d course=%d kind=%s (try %d)", in.UserID, in.CourseID, in.Kind, attempt+1)
			continue
		}
		return rec, err
	}
	return nil, ErrTransient
}

func (l *Ledger) tryRecord(ctx context.Context, in AttemptInput, guard AttemptGuard) (*quizModels.SubmissionRecord, error) {
	var rec quizModels.SubmissionRecord
	now := l.now()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ? AND kind = ?", in.UserID, in.CourseID, in.Kind).First(&rec).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if guard != nil {
			var current *quizModels.SubmissionRecord
			if exists {
				current = &rec
			}
			if err := guard(current); err != nil {
				return err
			}
		}

		passed := in.Kind == quizModels.KindPost && in.Passed

		if !exists {
			rec = quizModels.SubmissionRecord{
				UserID:       in.UserID,
				CourseID:     in.CourseID,
				Kind:         in.Kind,
				AttemptCount: 1,
				BestScore:    in.Score,
				LastScore:    in.Score,
				Total:        in.Total,
				Passed:       passed,
				Version:      1,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		} else {
			next := rec
			next.AttemptCount++
			next.LastScore = in.Score
			next.Total = in.Total
			if in.Score > next.BestScore {
				next.BestScore = in.Score
			}
			next.Passed = rec.Passed || passed
			next.Version = rec.Version + 1
			next.UpdatedAt = now

			res := tx.Model(&quizModels.SubmissionRecord{}).
				Where("id = ? AND version = ?", rec.ID, rec.Version).
				Updates(map[string]interface{}{
					"attempt_count": next.AttemptCount,
					"last_score":    next.LastScore,
					"best_score":    next.BestScore,
					"total":         next.Total,
					"passed":        next.Passed,
					"version":       next.Version,
					"updated_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errVersionConflict
			}
			rec = next
		}

		answers := in.Answers
		if len(answers) == 0 {
			answers = datatypes.JSON("[]")
		}
		return tx.Create(&quizModels.QuizAttempt{
			SubmissionID: rec.ID,
			Score:        in.Score,
			Total:        in.Total,
			Answers:      answers,
			CreatedAt:    now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListReconcilable returns passed post-test records that either have no
// certificate yet or were updated at or after since. A zero since returns
// every passed post-test record.
func (l *Ledger) ListReconcilable(ctx context.Context, since time.Time) ([]quizModels.SubmissionRecord, error) {
	q := l.db.WithContext(ctx).
		Model(&quizModels.SubmissionRecord{}).
		Select("submission_records.*").
		Joins("LEFT JOIN certificates ON certificates.user_id = submission_records.user_id AND certificates.course_id = submission_records.course_id").
		Where("submission_records.kind = ? AND submission_records.passed = ?", quizModels.KindPost, true)
	if !since.IsZero() {
		q = q.Where("(certificates.id IS NULL OR submission_records.updated_at >= ?)", since)
	}

	var recs []quizModels.SubmissionRecord
	if err := q.Order("submission_records.id asc").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

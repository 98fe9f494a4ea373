package quiz

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionRecord is the ledger entry of one learner for one quiz of a course
type SubmissionRecord struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	UserID       uint          `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_owner,priority:1"`
	CourseID     uint          `json:"course_id" gorm:"not null;uniqueIndex:idx_submission_owner,priority:2"`
	Kind         Kind          `json:"kind" gorm:"type:varchar(8);not null;uniqueIndex:idx_submission_owner,priority:3"`
	AttemptCount int           `json:"attempt_count" gorm:"not null"`
	BestScore    int           `json:"best_score" gorm:"not null"`
	LastScore    int           `json:"last_score" gorm:"not null"`
	Total        int           `json:"total" gorm:"not null"`
	Passed       bool          `json:"passed" gorm:"not null;index"`
	Version      int           `json:"-" gorm:"not null"`
	Attempts     []QuizAttempt `json:"attempts,omitempty" gorm:"foreignKey:SubmissionID"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"index"`
}

// QuizAttempt is one append-only entry of a record's attempt log
type QuizAttempt struct {
	ID           uint           `json:"-" gorm:"primaryKey"`
	SubmissionID uint           `json:"-" gorm:"index;not null"`
	Score        int            `json:"score" gorm:"not null"`
	Total        int            `json:"total" gorm:"not null"`
	Answers      datatypes.JSON `json:"answers"` // payload as submitted
	CreatedAt    time.Time      `json:"created_at"`
}

// Status is the public summary of a record
type Status struct {
	AttemptCount int  `json:"attempt_count"`
	BestScore    int  `json:"best_score"`
	LastScore    int  `json:"last_score"`
	Total        int  `json:"total"`
	Passed       bool `json:"passed"`
}

// Status summarises the record; a nil record has no status
func (r *SubmissionRecord) Status() *Status {
	if r == nil {
		return nil
	}
	return &Status{
		AttemptCount: r.AttemptCount,
		BestScore:    r.BestScore,
		LastScore:    r.LastScore,
		Total:        r.Total,
		Passed:       r.Passed,
	}
}

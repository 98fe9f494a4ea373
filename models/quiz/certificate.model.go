package quiz

import "time"

// Certificate is the proof of completion of one learner for one course.
// CertificateCode is written once on insert and never regenerated; the score
// fields are a snapshot refreshed on every eligibility check.
type Certificate struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	UserID              uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_owner,priority:1"`
	CourseID            uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_certificate_owner,priority:2"`
	OrderID             uint      `json:"order_id" gorm:"index"`
	CertificateCode     string    `json:"certificate_code" gorm:"type:varchar(64);uniqueIndex;not null"`
	PreTestScore        int       `json:"pre_test_score"`
	PreTestTotal        int       `json:"pre_test_total"`
	PostTestScore       int       `json:"post_test_score"`
	PostTestTotal       int       `json:"post_test_total"`
	PassingScorePercent int       `json:"passing_score_percent"`
	IssuedAt            time.Time `json:"issued_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

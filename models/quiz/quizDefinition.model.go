package quiz

import (
	"time"

	"gorm.io/datatypes"
)

// Kind identifies which quiz of a course an attempt belongs to
type Kind string

const (
	KindPre  Kind = "pre"
	KindPost Kind = "post"
)

// ParseKind converts a route segment into a Kind
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPre:
		return KindPre, true
	case KindPost:
		return KindPost, true
	}
	return "", false
}

// ChoiceCount is the fixed number of options of every question
const ChoiceCount = 4

// Question is one multiple choice item. ID is assigned at authoring time and
// never derived from the question's position.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
}

// QuizDefinition holds the pre-test and post-test of one course
type QuizDefinition struct {
	ID                  uint                          `json:"id" gorm:"primaryKey"`
	CourseID            uint                          `json:"course_id" gorm:"uniqueIndex;not null"`
	PreTest             datatypes.JSONSlice[Question] `json:"pre_test"`
	PostTest            datatypes.JSONSlice[Question] `json:"post_test"`
	PassingScorePercent int                           `json:"passing_score_percent" gorm:"not null"`
	RequirePreTest      bool                          `json:"require_pre_test" gorm:"not null"`
	CreatedAt           time.Time                     `json:"created_at"`
	UpdatedAt           time.Time                     `json:"updated_at"`
}

// Questions returns the question set of the given kind
func (d *QuizDefinition) Questions(kind Kind) []Question {
	if d == nil {
		return nil
	}
	if kind == KindPre {
		return d.PreTest
	}
	return d.PostTest
}

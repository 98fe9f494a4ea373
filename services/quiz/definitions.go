package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	quizModels "coursesi/models/quiz"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

// QuestionInput is an authored question. ID is kept when present so that
// edits do not break answer correlation; new questions get a fresh uuid.
type QuestionInput struct {
	ID           string   `json:"id" validate:"omitempty,max=64"`
	Prompt       string   `json:"prompt" validate:"required"`
	Choices      []string `json:"choices" validate:"len=4,unique,dive,required"`
	CorrectIndex *int     `json:"correct_index" validate:"required,min=0,max=3"`
	Explanation  string   `json:"explanation"`
}

// DefinitionInput updates a course's quiz. A nil test slice leaves the stored
// test untouched; nil settings keep their stored or default value.
type DefinitionInput struct {
	PreTest             []QuestionInput `json:"pre_test" validate:"omitempty,dive"`
	PostTest            []QuestionInput `json:"post_test" validate:"omitempty,dive"`
	PassingScorePercent *int            `json:"passing_score_percent" validate:"omitempty,min=0,max=100"`
	RequirePreTest      *bool           `json:"require_pre_test"`
}

// Validate checks field rules and question id uniqueness within each test
func (in DefinitionInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	for name, set := range map[string][]QuestionInput{"pre_test": in.PreTest, "post_test": in.PostTest} {
		seen := make(map[string]bool, len(set))
		for _, q := range set {
			if q.ID == "" {
				continue
			}
			if seen[q.ID] {
				return fmt.Errorf("%w: duplicate question id %q in %s", ErrInvalidDefinition, q.ID, name)
			}
			seen[q.ID] = true
		}
	}
	return nil
}

// DefinitionStore is the per-course quiz definition store
type DefinitionStore struct {
	db             *gorm.DB
	defaultPercent int
}

func NewDefinitionStore(db *gorm.DB, defaultPercent int) *DefinitionStore {
	return &DefinitionStore{db: db, defaultPercent: defaultPercent}
}

// Get returns nil when the course has no quiz definition
func (s *DefinitionStore) Get(ctx context.Context, courseID uint) (*quizModels.QuizDefinition, error) {
	var def quizModels.QuizDefinition
	err := s.db.WithContext(ctx).Where("course_id = ?", courseID).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// PassingPercent returns the live threshold of a course
func (s *DefinitionStore) PassingPercent(def *quizModels.QuizDefinition) int {
	if def == nil {
		return s.defaultPercent
	}
	return def.PassingScorePercent
}

// Upsert creates or updates the quiz of a course
func (s *DefinitionStore) Upsert(ctx context.Context, courseID uint, in DefinitionInput) (*quizModels.QuizDefinition, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var saved *quizModels.QuizDefinition
	var err error
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		saved, err = s.tryUpsert(ctx, courseID, in)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return saved, err
		}
	}
	return nil, ErrTransient
}

func (s *DefinitionStore) tryUpsert(ctx context.Context, courseID uint, in DefinitionInput) (*quizModels.QuizDefinition, error) {
	var def quizModels.QuizDefinition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("course_id = ?", courseID).First(&def).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			def = quizModels.QuizDefinition{
				CourseID:            courseID,
				PreTest:             []quizModels.Question{},
				PostTest:            []quizModels.Question{},
				PassingScorePercent: s.defaultPercent,
				RequirePreTest:      true,
			}
		}

		if in.PreTest != nil {
			def.PreTest = toQuestions(in.PreTest)
		}
		if in.PostTest != nil {
			def.PostTest = toQuestions(in.PostTest)
		}
		if in.PassingScorePercent != nil {
			def.PassingScorePercent = *in.PassingScorePercent
		}
		if in.RequirePreTest != nil {
			def.RequirePreTest = *in.RequirePreTest
		}

		if isNew {
			return tx.Create(&def).Error
		}
		return tx.Save(&def).Error
	})
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// Delete removes the quiz of a course. Ledger records and certificates are
// kept.
func (s *DefinitionStore) Delete(ctx context.Context, courseID uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("course_id = ?", courseID).Delete(&quizModels.QuizDefinition{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func toQuestions(in []QuestionInput) []quizModels.Question {
	out := make([]quizModels.Question, 0, len(in))
	for _, q := range in {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		choices := make([]string, len(q.Choices))
		copy(choices, q.Choices)
		out = append(out, quizModels.Question{
			ID:           id,
			Prompt:       strings.TrimSpace(q.Prompt),
			Choices:      choices,
			CorrectIndex: *q.CorrectIndex,
			Explanation:  q.Explanation,
		})
	}
	return out
}

package quiz

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	quizModels "coursesi/models/quiz"

	"gorm.io/gorm"
)

// Options configures a Service
type Options struct {
	DefaultPassingPercent int
	Orders                OrderReader // defaults to the orders table
	Publisher             Publisher   // optional
	Now                   func() time.Time
}

// Service runs quiz submissions end to end: load the definition, score,
// record in the ledger and, for a passing post-test, issue the certificate.
type Service struct {
	Definitions *DefinitionStore
	Ledger      *Ledger
	Issuer      *Issuer
}

func NewService(db *gorm.DB, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Orders == nil {
		opts.Orders = NewGormOrderReader(db)
	}
	defs := NewDefinitionStore(db, opts.DefaultPassingPercent)
	ledger := NewLedger(db, opts.Now)
	return &Service{
		Definitions: defs,
		Ledger:      ledger,
		Issuer:      NewIssuer(db, ledger, defs, opts.Orders, opts.Publisher, opts.Now),
	}
}

// QuizStatus is the learner's state for both quizzes of a course
type QuizStatus struct {
	Pre  *quizModels.Status `json:"pre"`
	Post *quizModels.Status `json:"post"`
}

// PreTestResult is returned for a pre-test submission
type PreTestResult struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// PostTestResult is returned for a post-test submission
type PostTestResult struct {
	Score             int   `json:"score"`
	Total             int   `json:"total"`
	Passed            bool  `json:"passed"`
	AttemptCount      int   `json:"attempt_count"`
	BestScore         int   `json:"best_score"`
	PassThreshold     int   `json:"pass_threshold"`
	CertificateIssued bool  `json:"certificate_issued"`
	CertificateID     *uint `json:"certificate_id"`
}

// QuestionView is a question as shown to a learner, without the answer key
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

func (s *Service) GetQuizStatus(ctx context.Context, userID, courseID uint) (*QuizStatus, error) {
	pre, err := s.Ledger.Get(ctx, userID, courseID, quizModels.KindPre)
	if err != nil {
		return nil, err
	}
	post, err := s.Ledger.Get(ctx, userID, courseID, quizModels.KindPost)
	if err != nil {
		return nil, err
	}
	return &QuizStatus{Pre: pre.Status(), Post: post.Status()}, nil
}

// QuizView returns the questions of one quiz without answers. Post-test
// questions are shuffled when shuffle is set; answers are correlated by id so
// the order a learner sees does not matter for scoring.
func (s *Service) QuizView(ctx context.Context, courseID uint, kind quizModels.Kind, shuffle bool) ([]QuestionView, error) {
	questions, _, err := s.loadQuestions(ctx, courseID, kind)
	if err != nil {
		return nil, err
	}

	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{ID: q.ID, Prompt: q.Prompt, Choices: append([]string(nil), q.Choices...)}
	}
	if shuffle && kind == quizModels.KindPost {
		rand.Shuffle(len(views), func(a, b int) { views[a], views[b] = views[b], views[a] })
	}
	return views, nil
}

// SubmitPreTest scores and records the learner's single pre-test attempt
func (s *Service) SubmitPreTest(ctx context.Context, userID, courseID uint, answers SubmittedAnswers) (*PreTestResult, error) {
	questions, _, err := s.loadQuestions(ctx, courseID, quizModels.KindPre)
	if err != nil {
		return nil, err
	}

	result := Score(questions, answers.Sheet(questions))

	_, err = s.Ledger.RecordAttempt(ctx, AttemptInput{
		UserID:   userID,
		CourseID: courseID,
		Kind:     quizModels.KindPre,
		Score:    result.Score,
		Total:    result.Total,
		Answers:  answers.Raw(),
	}, func(existing *quizModels.SubmissionRecord) error {
		if existing != nil && existing.AttemptCount >= 1 {
			return ErrAlreadyCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[QUIZ] pre-test user=%d course=%d score=%d/%d", userID, courseID, result.Score, result.Total)
	return &PreTestResult{Score: result.Score, Total: result.Total}, nil
}

// SubmitPostTest scores and records a post-test attempt and, when it passes,
// asks the issuer for a certificate.
func (s *Service) SubmitPostTest(ctx context.Context, userID, courseID uint, answers SubmittedAnswers) (*PostTestResult, error) {
	questions, def, err := s.loadQuestions(ctx, courseID, quizModels.KindPost)
	if err != nil {
		return nil, err
	}

	if def.RequirePreTest {
		pre, err := s.Ledger.Get(ctx, userID, courseID, quizModels.KindPre)
		if err != nil {
			return nil, err
		}
		if pre == nil || pre.AttemptCount < 1 {
			return nil, ErrPrerequisiteNotMet
		}
	}

	result := Score(questions, answers.Sheet(questions))
	threshold := PassThreshold(def.PassingScorePercent, result.Total)
	passed := result.Score >= threshold

	rec, err := s.Ledger.RecordAttempt(ctx, AttemptInput{
		UserID:   userID,
		CourseID: courseID,
		Kind:     quizModels.KindPost,
		Score:    result.Score,
		Total:    result.Total,
		Passed:   passed,
		Answers:  answers.Raw(),
	}, func(existing *quizModels.SubmissionRecord) error {
		if existing != nil && existing.Passed {
			return ErrAlreadyPassed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &PostTestResult{
		Score:         result.Score,
		Total:         result.Total,
		Passed:        passed,
		AttemptCount:  rec.AttemptCount,
		BestScore:     rec.BestScore,
		PassThreshold: threshold,
	}

	if passed {
		// the attempt is already recorded; an issuance failure is left to reconciliation
		cert, err := s.Issuer.IssueIfEligible(ctx, userID, courseID)
		if err != nil {
			log.Printf("[QUIZ] certificate check failed user=%d course=%d: %v", userID, courseID, err)
		} else if cert != nil {
			out.CertificateIssued = true
			out.CertificateID = &cert.ID
		}
	}

	log.Printf("[QUIZ] post-test user=%d course=%d score=%d/%d passed=%t attempt=%d", userID, courseID, result.Score, result.Total, passed, rec.AttemptCount)
	return out, nil
}

// GetCertificate returns nil when no certificate was issued for the pair
func (s *Service) GetCertificate(ctx context.Context, userID, courseID uint) (*quizModels.Certificate, error) {
	return s.Issuer.Get(ctx, userID, courseID)
}

func (s *Service) loadQuestions(ctx context.Context, courseID uint, kind quizModels.Kind) ([]quizModels.Question, *quizModels.QuizDefinition, error) {
	def, err := s.Definitions.Get(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if def == nil {
		return nil, nil, ErrMissingQuizConfig
	}
	questions := def.Questions(kind)
	if len(questions) == 0 {
		return nil, nil, ErrNoQuestions
	}
	return questions, def, nil
}

package quiz

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"coursesi/database/dbtest"
	"coursesi/models"
	quizModels "coursesi/models/quiz"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stepClock advances by one millisecond on every reading
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Millisecond)
	return c.cur
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []CertificateEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event CertificateEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []CertificateEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]CertificateEvent(nil), p.events...)
}

type fixture struct {
	db        *gorm.DB
	svc       *Service
	publisher *recordingPublisher
	clock     *stepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	pub := &recordingPublisher{}
	clock := newStepClock()
	svc := NewService(db, Options{DefaultPassingPercent: 70, Publisher: pub, Now: clock.Now})
	t.Cleanup(svc.Issuer.Wait)
	return &fixture{db: db, svc: svc, publisher: pub, clock: clock}
}

// makeQuestions builds n questions with ids "<prefix>-<i>" and correct index i%4
func makeQuestions(prefix string, n int) []quizModels.Question {
	qs := make([]quizModels.Question, n)
	for i := range qs {
		qs[i] = quizModels.Question{
			ID:           fmt.Sprintf("%s-%d", prefix, i),
			Prompt:       fmt.Sprintf("Question %d", i+1),
			Choices:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
		}
	}
	return qs
}

// answersFor answers the first `correct` questions right and the rest wrong
func answersFor(questions []quizModels.Question, correct int) SubmittedAnswers {
	pairs := make([]QuestionAnswer, len(questions))
	for i, q := range questions {
		idx := q.CorrectIndex
		if i >= correct {
			idx = (q.CorrectIndex + 1) % 4
		}
		pairs[i] = QuestionAnswer{QuestionID: q.ID, AnswerIndex: idx}
	}
	return KeyedAnswers(pairs...)
}

func (f *fixture) seedDefinition(t *testing.T, courseID uint, pre, post int, percent int, requirePre bool) *quizModels.QuizDefinition {
	t.Helper()
	def := &quizModels.QuizDefinition{
		CourseID:            courseID,
		PreTest:             makeQuestions(fmt.Sprintf("pre%d", courseID), pre),
		PostTest:            makeQuestions(fmt.Sprintf("post%d", courseID), post),
		PassingScorePercent: percent,
		RequirePreTest:      requirePre,
	}
	require.NoError(t, f.db.Create(def).Error)
	return def
}

func (f *fixture) seedOrder(t *testing.T, userID, courseID uint, status string, purchased time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        userID,
		CourseID:      courseID,
		TotalPrice:    1990,
		PaymentStatus: status,
		CustomerName:  "Learner",
		CustomerEmail: fmt.Sprintf("learner%d@example.com", userID),
		PurchaseDate:  purchased,
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func (f *fixture) certificateCount(t *testing.T, userID, courseID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&quizModels.Certificate{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error)
	return n
}

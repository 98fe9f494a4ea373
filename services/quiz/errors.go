package quiz

import "errors"

// RejectionError is a request the quiz rules refuse. Code is stable for
// clients, Reason is shown to the learner.
type RejectionError struct {
	Code   string
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

// Is matches rejections by code so that variants with a different reason
// still satisfy errors.Is against the base value.
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Code == e.Code
}

var (
	ErrMissingQuizConfig = &RejectionError{Code: "MISSING_QUIZ_CONFIG", Reason: "no quiz config for this course"}
	ErrNoQuestions       = &RejectionError{Code: "MISSING_QUIZ_CONFIG", Reason: "this quiz has no questions"}

	ErrPrerequisiteNotMet = &RejectionError{Code: "PREREQUISITE_NOT_MET", Reason: "the pre-test must be taken before the post-test"}
	ErrAlreadyCompleted   = &RejectionError{Code: "ALREADY_COMPLETED", Reason: "the pre-test can only be taken once"}
	ErrAlreadyPassed      = &RejectionError{Code: "ALREADY_PASSED", Reason: "the post-test has already been passed and cannot be retaken"}
)

// ErrTransient is returned when a concurrent writer kept winning the race for
// the same ledger or certificate key. The client may retry.
var ErrTransient = errors.New("the request conflicted with a concurrent update, please retry")

// ErrInvalidDefinition wraps quiz definition validation failures
var ErrInvalidDefinition = errors.New("invalid quiz definition")

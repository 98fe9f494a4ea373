package quiz

import quizModels "coursesi/models/quiz"

// Result is the outcome of scoring one attempt
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Score counts the questions whose chosen index equals the correct one.
// Unanswered and out of range answers count as wrong. Score has no side
// effects and depends only on its arguments.
func Score(questions []quizModels.Question, sheet AnswerSheet) Result {
	res := Result{Total: len(questions)}
	for _, q := range questions {
		chosen, ok := sheet[q.ID]
		if !ok || chosen < 0 || chosen >= quizModels.ChoiceCount {
			continue
		}
		if chosen == q.CorrectIndex {
			res.Score++
		}
	}
	return res
}

// PassThreshold is the minimum number of correct answers, percent of total
// rounded up.
func PassThreshold(percent, total int) int {
	if total <= 0 || percent <= 0 {
		return 0
	}
	return (percent*total + 99) / 100
}

// MeetsPercent reports whether score/total*100 >= percent without floats
func MeetsPercent(score, total, percent int) bool {
	if total <= 0 {
		return false
	}
	return score*100 >= percent*total
}

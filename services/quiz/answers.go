package quiz

import (
	"bytes"
	"encoding/json"
	"math"

	quizModels "coursesi/models/quiz"

	"gorm.io/datatypes"
)

// AnswerSheet maps a question id to the chosen choice index
type AnswerSheet map[string]int

// QuestionAnswer is one entry of the keyed answer shape
type QuestionAnswer struct {
	QuestionID  string `json:"questionId"`
	AnswerIndex int    `json:"answerIndex"`
}

// SubmittedAnswers is the "answers" payload of a submission. Two shapes are
// accepted: a list of {questionId, answerIndex} objects, or a legacy list of
// indexes aligned with the stored question order. Decoding never fails on
// malformed entries; they become unanswered questions.
type SubmittedAnswers struct {
	keyed      []QuestionAnswer
	positional []int
	raw        json.RawMessage
}

// KeyedAnswers builds a keyed submission
func KeyedAnswers(pairs ...QuestionAnswer) SubmittedAnswers {
	raw, _ := json.Marshal(pairs)
	return SubmittedAnswers{keyed: pairs, raw: raw}
}

// PositionalAnswers builds a legacy positional submission
func PositionalAnswers(indexes ...int) SubmittedAnswers {
	raw, _ := json.Marshal(indexes)
	return SubmittedAnswers{positional: indexes, raw: raw}
}

// UnmarshalJSON resolves the payload shape from its first non-null element
func (a *SubmittedAnswers) UnmarshalJSON(data []byte) error {
	*a = SubmittedAnswers{raw: append(json.RawMessage(nil), data...)}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// not a list: nothing was answered
		return nil
	}

	keyed := false
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		keyed = trimmed[0] == '{'
		break
	}

	if keyed {
		for _, item := range items {
			if qa, ok := parseKeyedItem(item); ok {
				a.keyed = append(a.keyed, qa)
			}
		}
		return nil
	}

	a.positional = make([]int, len(items))
	for i, item := range items {
		a.positional[i] = parseIndex(item)
	}
	return nil
}

// MarshalJSON returns the payload as submitted
func (a SubmittedAnswers) MarshalJSON() ([]byte, error) {
	return a.Raw(), nil
}

// Keyed reports whether the payload used the {questionId, answerIndex} shape
func (a SubmittedAnswers) Keyed() bool {
	return a.keyed != nil
}

// Raw is the original payload, stored verbatim in the attempt log
func (a SubmittedAnswers) Raw() datatypes.JSON {
	if len(a.raw) == 0 {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(a.raw)
}

// Sheet resolves the submission against a question set. Positional answers
// are bound to question ids using the stored, unshuffled order.
func (a SubmittedAnswers) Sheet(questions []quizModels.Question) AnswerSheet {
	sheet := make(AnswerSheet, len(questions))
	if a.keyed != nil {
		for _, qa := range a.keyed {
			sheet[qa.QuestionID] = qa.AnswerIndex
		}
		return sheet
	}
	for i, q := range questions {
		if i >= len(a.positional) {
			break
		}
		sheet[q.ID] = a.positional[i]
	}
	return sheet
}

func parseKeyedItem(item json.RawMessage) (QuestionAnswer, bool) {
	var obj struct {
		QuestionID       json.RawMessage `json:"questionId"`
		QuestionIDSnake  json.RawMessage `json:"question_id"`
		AnswerIndex      json.RawMessage `json:"answerIndex"`
		AnswerIndexSnake json.RawMessage `json:"answer_index"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return QuestionAnswer{}, false
	}

	idRaw, idxRaw := obj.QuestionID, obj.AnswerIndex
	if len(idRaw) == 0 {
		idRaw = obj.QuestionIDSnake
	}
	if len(idxRaw) == 0 {
		idxRaw = obj.AnswerIndexSnake
	}

	id := parseID(idRaw)
	if id == "" {
		return QuestionAnswer{}, false
	}
	return QuestionAnswer{QuestionID: id, AnswerIndex: parseIndex(idxRaw)}, true
}

// parseID accepts string or numeric ids
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// parseIndex returns -1 for anything that is not an integral number
func parseIndex(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return -1
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return -1
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}

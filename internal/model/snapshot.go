package model

import "github.com/google/uuid"

// SnapshotAnswer is an answer choice as frozen into a generated paper.
type SnapshotAnswer struct {
	AnswerID  uuid.UUID `json:"answer_id"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	Score     *float64  `json:"score,omitempty"`
	IsCorrect bool      `json:"is_correct"`
}

// SnapshotQuestion is an owned, point-in-time copy of a question as it
// appears on one generated paper: shuffled answer order, assigned labels.
// Later edits to the source Question do not touch it.
type SnapshotQuestion struct {
	QuestionID uuid.UUID        `json:"question_id"`
	Label      string           `json:"label"`
	Content    string           `json:"content"`
	Picture    *string          `json:"picture,omitempty"`
	Level      Level            `json:"level"`
	Category   QuestionCategory `json:"category"`
	Answers    []SnapshotAnswer `json:"answers"`
}

// Snapshot copies a live question into an exam-paper snapshot. Labels and
// answer order are assigned by the generator afterwards.
func Snapshot(q *Question) SnapshotQuestion {
	answers := make([]SnapshotAnswer, len(q.Answers))
	for i, a := range q.Answers {
		answers[i] = SnapshotAnswer{
			AnswerID:  a.ID,
			Value:     a.Value,
			Score:     a.Score,
			IsCorrect: a.IsCorrect,
		}
	}
	return SnapshotQuestion{
		QuestionID: q.ID,
		Content:    q.Content,
		Picture:    q.Picture,
		Level:      q.Level,
		Category:   q.Category,
		Answers:    answers,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionCategory enumerates the supported question formats.
type QuestionCategory string

const (
	CategorySingleChoice   QuestionCategory = "SINGLE_CHOICE"
	CategoryMultipleChoice QuestionCategory = "MULTIPLE_CHOICE"
	CategoryFillIn         QuestionCategory = "FILL_IN"
)

// Valid reports whether c is a known question category.
func (c QuestionCategory) Valid() bool {
	switch c {
	case CategorySingleChoice, CategoryMultipleChoice, CategoryFillIn:
		return true
	}
	return false
}

// Question is a live question in the bank. Generated papers never reference a
// Question directly; they embed a SnapshotQuestion copied at generation time.
type Question struct {
	ID        uuid.UUID        `json:"id"`
	ChapterID uuid.UUID        `json:"chapter_id"`
	Content   string           `json:"content"`
	Picture   *string          `json:"picture,omitempty"`
	Remark    string           `json:"remark,omitempty"`
	Level     Level            `json:"level"`
	Category  QuestionCategory `json:"category"`
	Answers   []Answer         `json:"answers"`
	OwnerID   int              `json:"owner_id"`
	Enable    bool             `json:"enable"`
	Status    Visibility       `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CorrectAnswers returns the correct answer choices of the question.
func (q *Question) CorrectAnswers() []Answer {
	var out []Answer
	for _, a := range q.Answers {
		if a.IsCorrect {
			out = append(out, a)
		}
	}
	return out
}

// CreateQuestionRequest is the payload for adding a question to a chapter.
// For FILL_IN questions, exactly one correct answer is given and distractors
// are generated server-side up to DistractorQty.
type CreateQuestionRequest struct {
	ChapterID     uuid.UUID        `json:"chapter_id" binding:"required"`
	Content       string           `json:"content" binding:"required,min=1,max=4000"`
	Remark        string           `json:"remark" binding:"omitempty,max=500"`
	Level         Level            `json:"level" binding:"required,oneof=EASY MEDIUM HARD"`
	Category      QuestionCategory `json:"category" binding:"required,oneof=SINGLE_CHOICE MULTIPLE_CHOICE FILL_IN"`
	Answers       []AnswerInput    `json:"answers" binding:"required,min=1,dive"`
	Status        Visibility       `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	DistractorQty int              `json:"distractor_qty" binding:"omitempty,min=1,max=10"`
}

// UpdateQuestionRequest is the payload for updating an existing question.
type UpdateQuestionRequest struct {
	Content *string       `json:"content" binding:"omitempty,min=1,max=4000"`
	Remark  *string       `json:"remark" binding:"omitempty,max=500"`
	Level   *Level        `json:"level" binding:"omitempty,oneof=EASY MEDIUM HARD"`
	Answers []AnswerInput `json:"answers" binding:"omitempty,min=1,dive"`
	Status  *Visibility   `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	Enable  *bool         `json:"enable" binding:"omitempty"`
}

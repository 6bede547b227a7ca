package model

import "github.com/google/uuid"

// BlankPlaceholder is the token separating blank segments in fill-in
// question content and answer values.
const BlankPlaceholder = "[__]"

// Answer is an answer choice embedded in a question. Once embedded it is only
// ever replaced wholesale, never edited in place.
type Answer struct {
	ID        uuid.UUID `json:"id"`
	Value     string    `json:"value"`
	Score     *float64  `json:"score,omitempty"`
	IsCorrect bool      `json:"is_correct"`
	Remark    string    `json:"remark,omitempty"`
	OwnerID   int       `json:"owner_id"`
}

// AnswerInput is the payload for an answer choice inside a question request.
type AnswerInput struct {
	Value     string   `json:"value" binding:"required,min=1,max=2000"`
	Score     *float64 `json:"score" binding:"omitempty,min=0"`
	IsCorrect bool     `json:"is_correct"`
	Remark    string   `json:"remark" binding:"omitempty,max=500"`
}

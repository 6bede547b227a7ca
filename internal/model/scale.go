package model

import "github.com/google/uuid"

// Scale is one weight bucket of a generation request: draw Percent% of the
// paper's questions from the given chapter at the given difficulty level.
type Scale struct {
	ChapterID uuid.UUID `json:"chapter_id" binding:"required"`
	Percent   int       `json:"percent" binding:"required,min=10,max=100"`
	Level     Level     `json:"level" binding:"required,oneof=EASY MEDIUM HARD"`
}

// ScaleResult is a scale with its realized breakdown, stored on the exam.
type ScaleResult struct {
	ChapterID   uuid.UUID `json:"chapter_id"`
	Percent     int       `json:"percent"`
	Level       Level     `json:"level"`
	QuestionQty int       `json:"question_qty"`
	Score       float64   `json:"score"`
}

// SumPercent returns the total percentage across all scales.
func SumPercent(scales []Scale) int {
	sum := 0
	for _, s := range scales {
		sum += s.Percent
	}
	return sum
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is a generated paper: an immutable snapshot of selected, shuffled,
// labeled questions. After creation only metadata (label, time, status,
// enable) and the lesson association may change; Questions never do.
type Exam struct {
	ID        uuid.UUID          `json:"id"`
	Label     string             `json:"label"`
	Time      int                `json:"time"` // working time in minutes
	SKU       string             `json:"sku"`
	MaxScore  float64            `json:"max_score"`
	Scales    []ScaleResult      `json:"scales,omitempty"`
	Questions []SnapshotQuestion `json:"questions"`
	Status    Visibility         `json:"status"`
	Enable    bool               `json:"enable"`
	OwnerID   int                `json:"owner_id"`
	LessonRef LessonRef          `json:"lesson"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// QuestionInfo names questions hand-picked from one chapter for manual
// paper assembly.
type QuestionInfo struct {
	ChapterID   uuid.UUID   `json:"chapter_id" binding:"required"`
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}

// AssembleExamRequest is the payload for manual paper assembly: the caller
// picks the exact questions, the server shuffles, labels and snapshots.
type AssembleExamRequest struct {
	LessonID      uuid.UUID           `json:"lesson_id" binding:"required"`
	Label         string              `json:"label" binding:"required,min=1,max=255"`
	Time          int                 `json:"time" binding:"required,min=1,max=480"`
	SKU           string              `json:"sku" binding:"omitempty,min=2,max=20"`
	QuestionInfo  []QuestionInfo      `json:"question_info" binding:"required,min=1,dive"`
	NumberExams   int                 `json:"number_exams" binding:"required,min=1"`
	QuestionLabel QuestionLabelScheme `json:"question_label" binding:"required"`
	AnswerLabel   AnswerLabelScheme   `json:"answer_label" binding:"required"`
}

// GenerateExamRequest is the payload for scale-driven random assembly.
type GenerateExamRequest struct {
	LessonID       uuid.UUID           `json:"lesson_id" binding:"required"`
	Label          string              `json:"label" binding:"required,min=1,max=255"`
	Time           int                 `json:"time" binding:"required,min=1,max=480"`
	SKU            string              `json:"sku" binding:"omitempty,min=2,max=20"`
	Scales         []Scale             `json:"scales" binding:"required,min=1,dive"`
	TotalQuestions int                 `json:"total_questions" binding:"required,min=1"`
	NumberExams    int                 `json:"number_exams" binding:"required,min=1"`
	QuestionLabel  QuestionLabelScheme `json:"question_label" binding:"required"`
	AnswerLabel    AnswerLabelScheme   `json:"answer_label" binding:"required"`
}

// UpdateExamRequest is the payload for post-creation metadata updates. The
// question snapshot is deliberately not updatable.
type UpdateExamRequest struct {
	Label    *string     `json:"label" binding:"omitempty,min=1,max=255"`
	Time     *int        `json:"time" binding:"omitempty,min=1,max=480"`
	Status   *Visibility `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	Enable   *bool       `json:"enable" binding:"omitempty"`
	LessonID *uuid.UUID  `json:"lesson_id" binding:"omitempty"`
}

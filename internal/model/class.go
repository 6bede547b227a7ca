package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassLesson is a lesson entry embedded in a class, carrying the exam ids
// fanned out from the lesson registry.
type ClassLesson struct {
	LessonID uuid.UUID   `json:"lesson_id"`
	Name     string      `json:"name"`
	ExamIDs  []uuid.UUID `json:"exam_ids"`
}

// Class groups lessons for one cohort. Code is unique per owner.
type Class struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	StartYear int           `json:"start_year"`
	EndYear   int           `json:"end_year"`
	Lessons   []ClassLesson `json:"lessons"`
	OwnerID   int           `json:"owner_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Code      string `json:"code" binding:"required,min=1,max=50"`
	StartYear int    `json:"start_year" binding:"required,min=1990,max=2100"`
	EndYear   int    `json:"end_year" binding:"required,gtefield=StartYear"`
}

// UpdateClassRequest is the payload for updating a class.
type UpdateClassRequest struct {
	Name      *string      `json:"name" binding:"omitempty,min=1,max=255"`
	Code      *string      `json:"code" binding:"omitempty,min=1,max=50"`
	StartYear *int         `json:"start_year" binding:"omitempty,min=1990,max=2100"`
	EndYear   *int         `json:"end_year" binding:"omitempty"`
	LessonIDs *[]uuid.UUID `json:"lesson_ids" binding:"omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Lesson is a course unit grouping chapters and the exams generated for it.
// Version backs the compare-and-swap on exam-list appends so two concurrent
// generation requests cannot lose each other's writes.
type Lesson struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Status      Visibility  `json:"status"`
	Enable      bool        `json:"enable"`
	ChapterIDs  []uuid.UUID `json:"chapter_ids"`
	ExamIDs     []uuid.UUID `json:"exam_ids"`
	OwnerID     int         `json:"owner_id"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HasChapter reports whether the chapter is linked to this lesson.
func (l *Lesson) HasChapter(chapterID uuid.UUID) bool {
	for _, id := range l.ChapterIDs {
		if id == chapterID {
			return true
		}
	}
	return false
}

// VisibleTo reports whether the lesson can be read by the given caller.
func (l *Lesson) VisibleTo(userID int, isAdmin bool) bool {
	if !l.Enable {
		return false
	}
	return l.Status == VisibilityPublic || l.OwnerID == userID || isAdmin
}

// CreateLessonRequest is the payload for creating a lesson.
type CreateLessonRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	Label       string     `json:"label" binding:"omitempty,max=50"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Status      Visibility `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

// UpdateLessonRequest is the payload for updating a lesson. Renaming a lesson
// triggers a refresh of the name denormalized into its exams and classes.
type UpdateLessonRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=255"`
	Label       *string     `json:"label" binding:"omitempty,max=50"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Status      *Visibility `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	Enable      *bool       `json:"enable" binding:"omitempty"`
}

// LessonRef is the lesson identity denormalized into each generated exam.
type LessonRef struct {
	LessonID uuid.UUID `json:"lesson_id"`
	Name     string    `json:"name"`
}

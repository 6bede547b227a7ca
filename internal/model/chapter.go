package model

import (
	"time"

	"github.com/google/uuid"
)

// Chapter groups questions inside a lesson.
type Chapter struct {
	ID          uuid.UUID  `json:"id"`
	LessonID    *uuid.UUID `json:"lesson_id,omitempty"`
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Status      Visibility `json:"status"`
	Enable      bool       `json:"enable"`
	OwnerID     int        `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VisibleTo reports whether the chapter can be read by the given caller.
func (c *Chapter) VisibleTo(userID int, isAdmin bool) bool {
	if !c.Enable {
		return false
	}
	return c.Status == VisibilityPublic || c.OwnerID == userID || isAdmin
}

// CreateChapterRequest is the payload for creating a chapter.
type CreateChapterRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	Label       string     `json:"label" binding:"omitempty,max=50"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Status      Visibility `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	LessonID    *uuid.UUID `json:"lesson_id" binding:"omitempty"`
}

// UpdateChapterRequest is the payload for updating a chapter. A non-nil
// LessonID re-assigns the chapter; the lesson links on both sides are
// maintained in the same operation.
type UpdateChapterRequest struct {
	Name        *string     `json:"name" binding:"omitempty,min=1,max=255"`
	Label       *string     `json:"label" binding:"omitempty,max=50"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Status      *Visibility `json:"status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	Enable      *bool       `json:"enable" binding:"omitempty"`
	LessonID    *uuid.UUID  `json:"lesson_id" binding:"omitempty"`
}

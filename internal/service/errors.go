package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/model"
)

// Domain errors shared across services. Handlers map these to response codes.
var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrRecordUnavailable = errors.New("record exists but is not visible to the caller")
	ErrRecordExisted     = errors.New("record already exists")
	ErrRecordInUse       = errors.New("record is referenced by dependent data")
	ErrNoPermission      = errors.New("caller is not the owner of this record")
	ErrGenerationLimit   = errors.New("generation request exceeds configured limits")
	ErrUploadFailed      = errors.New("picture upload failed")
	ErrInvalidAnswers    = errors.New("invalid answer set")
	ErrInvalidInput      = errors.New("invalid field value")
	ErrConcurrentUpdate  = errors.New("record changed concurrently, retries exhausted")
)

// InvalidScaleError reports a scale list whose percentages do not sum to 100
// or whose buckets do not divide the paper size evenly.
type InvalidScaleError struct {
	Sum     int
	Reason  string
	Chapter uuid.UUID
}

func (e *InvalidScaleError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid scale for chapter %s: %s", e.Chapter, e.Reason)
	}
	return fmt.Sprintf("scale percentages sum to %d, expected 100", e.Sum)
}

// InsufficientQuestionsError reports a chapter+level bucket holding fewer
// questions than the requested draw.
type InsufficientQuestionsError struct {
	ChapterID   uuid.UUID
	ChapterName string
	Level       model.Level
	Available   int
	Required    int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("chương %q không đủ câu hỏi mức %s: cần %d, hiện có %d",
		e.ChapterName, e.Level.DisplayName(), e.Required, e.Available)
}

// ChapterNotInLessonError reports a manual-assembly request naming a chapter
// that is not linked to the target lesson.
type ChapterNotInLessonError struct {
	ChapterID uuid.UUID
	LessonID  uuid.UUID
}

func (e *ChapterNotInLessonError) Error() string {
	return fmt.Sprintf("chapter %s is not part of lesson %s", e.ChapterID, e.LessonID)
}

// QuestionNotInChapterError reports a hand-picked question that does not
// belong to the chapter it was submitted under.
type QuestionNotInChapterError struct {
	QuestionID uuid.UUID
	ChapterID  uuid.UUID
}

func (e *QuestionNotInChapterError) Error() string {
	return fmt.Sprintf("question %s does not belong to chapter %s", e.QuestionID, e.ChapterID)
}

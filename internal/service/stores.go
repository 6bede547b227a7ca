package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/model"
)

// The store interfaces below are the abstract persistence capabilities the
// services depend on. The pgx repositories implement them; tests use
// in-memory fakes. Keeping the services off concrete repositories also
// breaks the Chapter↔Lesson↔Exam↔Class dependency cycle: each service sees
// only the capabilities it needs, wired at composition time.

// ChapterStore is the chapter persistence capability.
type ChapterStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Chapter, error)
	ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Chapter, int, error)
	Create(ctx context.Context, c *model.Chapter) error
	Update(ctx context.Context, c *model.Chapter) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountQuestions(ctx context.Context, chapterID uuid.UUID) (int, error)
	DetachLesson(ctx context.Context, lessonID uuid.UUID) error
}

// QuestionStore is the question-bank persistence capability.
type QuestionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListByChapter(ctx context.Context, chapterID uuid.UUID) ([]model.Question, error)
	ListByChapterAndLevel(ctx context.Context, chapterID uuid.UUID, level model.Level) ([]model.Question, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReferencedByExam(ctx context.Context, id uuid.UUID) (bool, error)
}

// LessonStore is the lesson persistence capability.
type LessonStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lesson, error)
	ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Lesson, int, error)
	Create(ctx context.Context, l *model.Lesson) error
	Update(ctx context.Context, l *model.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddChapter(ctx context.Context, lessonID, chapterID uuid.UUID) error
	RemoveChapter(ctx context.Context, lessonID, chapterID uuid.UUID) error
	AppendExamIDs(ctx context.Context, lessonID uuid.UUID, examIDs []uuid.UUID, expectedVersion int) (bool, error)
	RemoveExamID(ctx context.Context, lessonID, examID uuid.UUID) error
}

// ExamStore is the generated-paper persistence capability.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]model.Exam, error)
	ListPaginated(ctx context.Context, ownerID, limit, offset int) ([]model.Exam, int, error)
	Insert(ctx context.Context, e *model.Exam) error
	UpdateMeta(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
	RefreshLessonName(ctx context.Context, lessonID uuid.UUID, name string) error
	CountByLesson(ctx context.Context, lessonID uuid.UUID) (int, error)
}

// ClassStore is the class persistence capability.
type ClassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	ExistsByCode(ctx context.Context, ownerID int, code string) (bool, error)
	ListPaginated(ctx context.Context, ownerID, limit, offset int, search string) ([]model.Class, int, error)
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserStore is the account persistence capability.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// RoleStore is the role and permission persistence capability.
type RoleStore interface {
	GetByID(ctx context.Context, id int) (*model.Role, error)
	GetByName(ctx context.Context, name string, isAdmin bool) (*model.Role, error)
	PermissionCodes(ctx context.Context, roleID int) ([]string, error)
	GrantAll(ctx context.Context, roleID int) error
}

// Caller is the resolved identity of the requester. Authentication happened
// upstream; services only check ownership and visibility against it.
type Caller struct {
	ID      int
	IsAdmin bool
}

// CanMutate reports whether the caller may mutate a record with the given
// owner. Admins bypass the ownership check.
func (c Caller) CanMutate(ownerID int) bool {
	return c.IsAdmin || c.ID == ownerID
}

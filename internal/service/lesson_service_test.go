package service

import (
	"context"
	"errors"
	"testing"

	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

type lessonFixture struct {
	svc      *LessonService
	lessons  *fakeLessonStore
	chapters *fakeChapterStore
	exams    *fakeExamStore
}

func newLessonFixture(t *testing.T) *lessonFixture {
	t.Helper()
	lessons := newFakeLessonStore()
	chapters := newFakeChapterStore()
	exams := newFakeExamStore()
	rdb, _ := newRecordingRedis()
	return &lessonFixture{
		svc:      NewLessonService(lessons, chapters, exams, rdb, zerolog.Nop()),
		lessons:  lessons,
		chapters: chapters,
		exams:    exams,
	}
}

func TestLessonRenamePropagatesToExams(t *testing.T) {
	f := newLessonFixture(t)
	owner := Caller{ID: 1}

	lesson, err := f.svc.Create(context.Background(), owner, &model.CreateLessonRequest{Name: "Vật lý 11"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	exam := &model.Exam{
		Label:     "Đề cũ",
		OwnerID:   owner.ID,
		Status:    model.VisibilityPrivate,
		LessonRef: model.LessonRef{LessonID: lesson.ID, Name: lesson.Name},
	}
	f.exams.Insert(context.Background(), exam)

	newName := "Vật lý 12"
	if _, err := f.svc.Update(context.Background(), owner, lesson.ID, &model.UpdateLessonRequest{Name: &newName}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stored, _ := f.exams.GetByID(context.Background(), exam.ID)
	if stored.LessonRef.Name != newName {
		t.Errorf("exam lesson name = %q, want %q", stored.LessonRef.Name, newName)
	}
}

func TestLessonDeleteBlockedByExams(t *testing.T) {
	f := newLessonFixture(t)
	owner := Caller{ID: 1}

	lesson, err := f.svc.Create(context.Background(), owner, &model.CreateLessonRequest{Name: "Hóa học 10"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.exams.Insert(context.Background(), &model.Exam{
		OwnerID:   owner.ID,
		Status:    model.VisibilityPrivate,
		LessonRef: model.LessonRef{LessonID: lesson.ID, Name: lesson.Name},
	})

	if err := f.svc.Delete(context.Background(), owner, lesson.ID); !errors.Is(err, ErrRecordInUse) {
		t.Fatalf("err = %v, want ErrRecordInUse", err)
	}
}

func TestLessonDeleteDetachesChapters(t *testing.T) {
	f := newLessonFixture(t)
	owner := Caller{ID: 1}

	lesson, err := f.svc.Create(context.Background(), owner, &model.CreateLessonRequest{Name: "Sinh học 10"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	chapter := &model.Chapter{Name: "Tế bào", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate, LessonID: &lesson.ID}
	f.chapters.Create(context.Background(), chapter)

	if err := f.svc.Delete(context.Background(), owner, lesson.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	stored, _ := f.chapters.GetByID(context.Background(), chapter.ID)
	if stored.LessonID != nil {
		t.Error("chapter still points at the deleted lesson")
	}
}

func TestLessonMutationRequiresOwnership(t *testing.T) {
	f := newLessonFixture(t)
	owner := Caller{ID: 1}
	stranger := Caller{ID: 2}

	lesson, err := f.svc.Create(context.Background(), owner, &model.CreateLessonRequest{Name: "Địa lý"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "Đổi tên"
	if _, err := f.svc.Update(context.Background(), stranger, lesson.ID, &model.UpdateLessonRequest{Name: &name}); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("err = %v, want ErrNoPermission", err)
	}
	if err := f.svc.Delete(context.Background(), stranger, lesson.ID); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("err = %v, want ErrNoPermission", err)
	}
}

package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

type chapterFixture struct {
	svc       *ChapterService
	chapters  *fakeChapterStore
	questions *fakeQuestionStore
	lessons   *fakeLessonStore
}

func newChapterFixture(t *testing.T, seed1, seed2 uint64) *chapterFixture {
	t.Helper()
	chapters := newFakeChapterStore()
	questions := newFakeQuestionStore()
	lessons := newFakeLessonStore()
	seeded := func() *rand.Rand { return generator.NewRand(seed1, seed2) }
	return &chapterFixture{
		svc:       NewChapterService(chapters, questions, lessons, seeded, zerolog.Nop()),
		chapters:  chapters,
		questions: questions,
		lessons:   lessons,
	}
}

func (f *chapterFixture) seedQuestions(chapterID uuid.UUID, level model.Level, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		q := &model.Question{
			ChapterID: chapterID,
			Content:   "nội dung",
			Level:     level,
			Category:  model.CategorySingleChoice,
			OwnerID:   1,
			Enable:    true,
			Status:    model.VisibilityPrivate,
		}
		f.questions.Create(context.Background(), q)
		ids[i] = q.ID
	}
	return ids
}

func TestSampleWithoutReplacement(t *testing.T) {
	f := newChapterFixture(t, 11, 17)
	owner := Caller{ID: 1}
	chapter := &model.Chapter{Name: "Dao động", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	f.chapters.Create(context.Background(), chapter)
	f.seedQuestions(chapter.ID, model.LevelMedium, 10)

	got, err := f.svc.Sample(context.Background(), owner, chapter.ID, model.LevelMedium, 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("sampled %d, want 7", len(got))
	}

	seen := map[uuid.UUID]bool{}
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("question %s drawn twice", q.ID)
		}
		seen[q.ID] = true
		if q.Level != model.LevelMedium {
			t.Errorf("question %s has level %s", q.ID, q.Level)
		}
	}
}

func TestSampleSkipsDisabledQuestions(t *testing.T) {
	f := newChapterFixture(t, 11, 17)
	owner := Caller{ID: 1}
	chapter := &model.Chapter{Name: "Sóng cơ", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	f.chapters.Create(context.Background(), chapter)
	ids := f.seedQuestions(chapter.ID, model.LevelEasy, 5)

	disabled, _ := f.questions.GetByID(context.Background(), ids[0])
	disabled.Enable = false
	f.questions.Update(context.Background(), disabled)

	_, err := f.svc.Sample(context.Background(), owner, chapter.ID, model.LevelEasy, 5)
	var insErr *InsufficientQuestionsError
	if !errors.As(err, &insErr) {
		t.Fatalf("err = %v, want InsufficientQuestionsError", err)
	}
	if insErr.Available != 4 {
		t.Errorf("available = %d, want 4 (disabled question excluded)", insErr.Available)
	}
}

func TestSampleRespectsVisibility(t *testing.T) {
	f := newChapterFixture(t, 11, 17)
	owner := Caller{ID: 1}
	stranger := Caller{ID: 2}
	admin := Caller{ID: 3, IsAdmin: true}

	private := &model.Chapter{Name: "Riêng", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	f.chapters.Create(context.Background(), private)
	f.seedQuestions(private.ID, model.LevelEasy, 3)

	if _, err := f.svc.Sample(context.Background(), stranger, private.ID, model.LevelEasy, 2); !errors.Is(err, ErrRecordUnavailable) {
		t.Fatalf("stranger err = %v, want ErrRecordUnavailable", err)
	}
	if _, err := f.svc.Sample(context.Background(), admin, private.ID, model.LevelEasy, 2); err != nil {
		t.Fatalf("admin should read private chapter: %v", err)
	}

	disabled := &model.Chapter{Name: "Tắt", Enable: false, OwnerID: owner.ID, Status: model.VisibilityPublic}
	f.chapters.Create(context.Background(), disabled)
	if _, err := f.svc.Sample(context.Background(), owner, disabled.ID, model.LevelEasy, 1); !errors.Is(err, ErrRecordUnavailable) {
		t.Fatalf("disabled chapter err = %v, want ErrRecordUnavailable", err)
	}
}

func TestChapterDeleteBlockedByQuestions(t *testing.T) {
	f := newChapterFixture(t, 1, 2)
	owner := Caller{ID: 1}
	chapter := &model.Chapter{Name: "Còn câu hỏi", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	f.chapters.Create(context.Background(), chapter)

	f.chapters.questionCounts[chapter.ID] = 3
	if err := f.svc.Delete(context.Background(), owner, chapter.ID); !errors.Is(err, ErrRecordInUse) {
		t.Fatalf("err = %v, want ErrRecordInUse", err)
	}

	f.chapters.questionCounts[chapter.ID] = 0
	if err := f.svc.Delete(context.Background(), owner, chapter.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.chapters.GetByID(context.Background(), chapter.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatal("chapter should be gone")
	}
}

func TestChapterLessonReassignment(t *testing.T) {
	f := newChapterFixture(t, 1, 2)
	owner := Caller{ID: 1}

	oldLesson := &model.Lesson{Name: "Cũ", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	newLesson := &model.Lesson{Name: "Mới", Enable: true, OwnerID: owner.ID, Status: model.VisibilityPrivate}
	f.lessons.Create(context.Background(), oldLesson)
	f.lessons.Create(context.Background(), newLesson)

	chapter, err := f.svc.Create(context.Background(), owner, &model.CreateChapterRequest{
		Name:     "Chương 1",
		LessonID: &oldLesson.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, _ := f.lessons.GetByID(context.Background(), oldLesson.ID)
	if !stored.HasChapter(chapter.ID) {
		t.Fatal("chapter not registered on old lesson")
	}

	if _, err := f.svc.Update(context.Background(), owner, chapter.ID, &model.UpdateChapterRequest{
		LessonID: &newLesson.ID,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	oldStored, _ := f.lessons.GetByID(context.Background(), oldLesson.ID)
	newStored, _ := f.lessons.GetByID(context.Background(), newLesson.ID)
	if oldStored.HasChapter(chapter.ID) {
		t.Error("chapter still registered on old lesson")
	}
	if !newStored.HasChapter(chapter.ID) {
		t.Error("chapter missing from new lesson")
	}

	got, _ := f.chapters.GetByID(context.Background(), chapter.ID)
	if got.LessonID == nil || *got.LessonID != newLesson.ID {
		t.Error("chapter row does not point at new lesson")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

type examFixture struct {
	svc      *ExamService
	chapters *fakeChapterStore
	question *fakeQuestionStore
	lessons  *fakeLessonStore
	exams    *fakeExamStore
	queue    *redisLog
}

func newExamFixture(t *testing.T) *examFixture {
	t.Helper()

	chapters := newFakeChapterStore()
	questions := newFakeQuestionStore()
	lessons := newFakeLessonStore()
	exams := newFakeExamStore()

	cfg := &config.Config{
		MaxPapersPerRequest:  20,
		MaxQuestionsPerPaper: 200,
	}
	rdb, queue := newRecordingRedis()
	log := zerolog.Nop()
	seeded := func() *rand.Rand { return generator.NewRand(7, 13) }

	sampler := NewChapterService(chapters, questions, lessons, seeded, log)
	return &examFixture{
		svc:      NewExamService(exams, lessons, chapters, sampler, cfg, rdb, seeded, log),
		chapters: chapters,
		question: questions,
		lessons:  lessons,
		exams:    exams,
		queue:    queue,
	}
}

func (f *examFixture) addLesson(ownerID int) *model.Lesson {
	l := &model.Lesson{Name: "Giải tích 12", Status: model.VisibilityPrivate, Enable: true, OwnerID: ownerID}
	f.lessons.Create(context.Background(), l)
	return l
}

func (f *examFixture) addChapter(ownerID int, lesson *model.Lesson) *model.Chapter {
	c := &model.Chapter{Name: "Hàm số", Status: model.VisibilityPrivate, Enable: true, OwnerID: ownerID}
	if lesson != nil {
		c.LessonID = &lesson.ID
	}
	f.chapters.Create(context.Background(), c)
	if lesson != nil {
		f.lessons.AddChapter(context.Background(), lesson.ID, c.ID)
	}
	return c
}

func (f *examFixture) addQuestions(chapterID uuid.UUID, level model.Level, n, ownerID int) []uuid.UUID {
	score := 1.0
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		q := &model.Question{
			ChapterID: chapterID,
			Content:   fmt.Sprintf("câu hỏi %s #%d", level, i),
			Level:     level,
			Category:  model.CategorySingleChoice,
			Answers: []model.Answer{
				{ID: uuid.New(), Value: "đúng", Score: &score, IsCorrect: true},
				{ID: uuid.New(), Value: "sai 1"},
				{ID: uuid.New(), Value: "sai 2"},
				{ID: uuid.New(), Value: "sai 3"},
			},
			OwnerID: ownerID,
			Enable:  true,
			Status:  model.VisibilityPrivate,
		}
		f.question.Create(context.Background(), q)
		ids[i] = q.ID
	}
	return ids
}

func generateReq(lessonID, chapterID uuid.UUID) *model.GenerateExamRequest {
	return &model.GenerateExamRequest{
		LessonID: lessonID,
		Label:    "Đề kiểm tra giữa kỳ",
		Time:     45,
		SKU:      "GK01",
		Scales: []model.Scale{
			{ChapterID: chapterID, Percent: 60, Level: model.LevelEasy},
			{ChapterID: chapterID, Percent: 40, Level: model.LevelHard},
		},
		TotalQuestions: 10,
		NumberExams:    3,
		QuestionLabel:  model.QuestionLabelEndDot,
		AnswerLabel:    model.AnswerLabelLowerDot,
	}
}

func TestGenerateBuildsPapers(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 8, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 5, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("papers = %d, want 3", len(papers))
	}

	for _, p := range papers {
		if len(p.Questions) != 10 {
			t.Errorf("paper %s has %d questions, want 10", p.SKU, len(p.Questions))
		}
		if p.MaxScore != 10 {
			t.Errorf("max score = %v, want 10", p.MaxScore)
		}
		if !strings.HasPrefix(p.SKU, "GK01") || len(p.SKU) != 7 {
			t.Errorf("sku %q does not match base GK01 + 3 digits", p.SKU)
		}
		for i, q := range p.Questions {
			want := fmt.Sprintf("Câu %d.", i+1)
			if q.Label != want {
				t.Errorf("question label = %q, want %q", q.Label, want)
			}
			if q.Answers[0].Label != "a." {
				t.Errorf("first answer label = %q, want a.", q.Answers[0].Label)
			}
		}
	}

	if papers[0].Scales[0].QuestionQty != 6 || papers[0].Scales[1].QuestionQty != 4 {
		t.Errorf("scale quantities = %d/%d, want 6/4",
			papers[0].Scales[0].QuestionQty, papers[0].Scales[1].QuestionQty)
	}
	if papers[0].Scales[0].Score != 6 || papers[0].Scales[1].Score != 4 {
		t.Errorf("scale scores = %v/%v, want 6/4",
			papers[0].Scales[0].Score, papers[0].Scales[1].Score)
	}
}

func TestGeneratePapersShareQuestionSet(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 12, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 6, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	idSet := func(p model.Exam) map[uuid.UUID]bool {
		m := map[uuid.UUID]bool{}
		for _, q := range p.Questions {
			m[q.QuestionID] = true
		}
		return m
	}
	first := idSet(papers[0])
	for _, p := range papers[1:] {
		other := idSet(p)
		if len(other) != len(first) {
			t.Fatalf("paper question sets differ in size")
		}
		for id := range first {
			if !other[id] {
				t.Fatalf("question %s missing from a sibling paper", id)
			}
		}
	}
}

func TestGenerateAppendsToLesson(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	updated, _ := f.lessons.GetByID(context.Background(), lesson.ID)
	if len(updated.ExamIDs) != len(papers) {
		t.Fatalf("lesson has %d exam ids, want %d", len(updated.ExamIDs), len(papers))
	}
	if updated.Version != lesson.Version+1 {
		t.Errorf("lesson version = %d, want %d", updated.Version, lesson.Version+1)
	}
}

func TestGenerateRejectsBadScaleSum(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)

	req := generateReq(lesson.ID, chapter.ID)
	req.Scales[1].Percent = 50

	_, err := f.svc.Generate(context.Background(), owner, req)
	var scaleErr *InvalidScaleError
	if !errors.As(err, &scaleErr) {
		t.Fatalf("err = %v, want InvalidScaleError", err)
	}
	if scaleErr.Sum != 110 {
		t.Errorf("sum = %d, want 110", scaleErr.Sum)
	}
}

func TestGenerateRejectsFractionalQuantity(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)

	req := generateReq(lesson.ID, chapter.ID)
	req.Scales[0].Percent = 55
	req.Scales[1].Percent = 45
	// 55% of 10 questions is 5.5.

	_, err := f.svc.Generate(context.Background(), owner, req)
	var scaleErr *InvalidScaleError
	if !errors.As(err, &scaleErr) {
		t.Fatalf("err = %v, want InvalidScaleError", err)
	}
	if scaleErr.Chapter != chapter.ID || scaleErr.Reason == "" {
		t.Errorf("error does not name the offending chapter: %v", scaleErr)
	}
}

func TestGenerateInsufficientQuestions(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 2, owner.ID)

	_, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	var insErr *InsufficientQuestionsError
	if !errors.As(err, &insErr) {
		t.Fatalf("err = %v, want InsufficientQuestionsError", err)
	}
	if insErr.ChapterID != chapter.ID || insErr.Level != model.LevelHard ||
		insErr.Available != 2 || insErr.Required != 4 {
		t.Errorf("unexpected detail: %+v", insErr)
	}
	if !strings.Contains(insErr.Error(), "Khó") {
		t.Errorf("message should carry the level display name: %q", insErr.Error())
	}
}

func TestGenerateOwnershipIsStrict(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	// Even an admin may not generate into someone else's lesson.
	admin := Caller{ID: 2, IsAdmin: true}
	_, err := f.svc.Generate(context.Background(), admin, generateReq(lesson.ID, chapter.ID))
	if !errors.Is(err, ErrNoPermission) {
		t.Fatalf("err = %v, want ErrNoPermission", err)
	}
}

func TestGenerateLimit(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)

	req := generateReq(lesson.ID, chapter.ID)
	req.NumberExams = 21

	if _, err := f.svc.Generate(context.Background(), owner, req); !errors.Is(err, ErrGenerationLimit) {
		t.Fatalf("err = %v, want ErrGenerationLimit", err)
	}
}

func TestGenerateRetriesVersionConflict(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	f.lessons.appendRejections = 2
	if _, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID)); err != nil {
		t.Fatalf("Generate should survive 2 conflicts: %v", err)
	}

	f.lessons.appendRejections = 3
	f.lessons.appendCalls = 0
	_, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("err = %v, want ErrConcurrentUpdate", err)
	}
	if f.lessons.appendCalls != 3 {
		t.Errorf("append attempts = %d, want 3", f.lessons.appendCalls)
	}
}

func TestSnapshotSurvivesQuestionEdit(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	ids := f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	live, _ := f.question.GetByID(context.Background(), ids[0])
	live.Content = "đã sửa"
	f.question.Update(context.Background(), live)

	stored, _ := f.exams.GetByID(context.Background(), papers[0].ID)
	for _, sq := range stored.Questions {
		if sq.QuestionID == ids[0] && sq.Content == "đã sửa" {
			t.Fatal("snapshot content followed the live question edit")
		}
	}
}

func TestAssembleValidatesMembership(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	linked := f.addChapter(owner.ID, lesson)
	stray := f.addChapter(owner.ID, nil)
	linkedIDs := f.addQuestions(linked.ID, model.LevelEasy, 3, owner.ID)
	strayIDs := f.addQuestions(stray.ID, model.LevelEasy, 2, owner.ID)

	base := &model.AssembleExamRequest{
		LessonID:      lesson.ID,
		Label:         "Đề tự chọn",
		Time:          30,
		NumberExams:   1,
		QuestionLabel: model.QuestionLabelEndColon,
		AnswerLabel:   model.AnswerLabelUpperDot,
	}

	base.QuestionInfo = []model.QuestionInfo{{ChapterID: stray.ID, QuestionIDs: strayIDs}}
	_, err := f.svc.Assemble(context.Background(), owner, base)
	var chapterErr *ChapterNotInLessonError
	if !errors.As(err, &chapterErr) {
		t.Fatalf("err = %v, want ChapterNotInLessonError", err)
	}

	base.QuestionInfo = []model.QuestionInfo{{ChapterID: linked.ID, QuestionIDs: strayIDs[:1]}}
	_, err = f.svc.Assemble(context.Background(), owner, base)
	var questionErr *QuestionNotInChapterError
	if !errors.As(err, &questionErr) {
		t.Fatalf("err = %v, want QuestionNotInChapterError", err)
	}

	base.QuestionInfo = []model.QuestionInfo{{ChapterID: linked.ID, QuestionIDs: linkedIDs}}
	papers, err := f.svc.Assemble(context.Background(), owner, base)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(papers[0].Questions) != 3 {
		t.Fatalf("assembled paper has %d questions, want 3", len(papers[0].Questions))
	}
	if papers[0].Questions[0].Label != "Câu 1:" {
		t.Errorf("label = %q, want Câu 1:", papers[0].Questions[0].Label)
	}
	if got := papers[0].Scales[0].Percent; got != 100 {
		t.Errorf("derived percent = %d, want 100", got)
	}
}

func TestAssembleRejectsDuplicateQuestions(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	ids := f.addQuestions(chapter.ID, model.LevelEasy, 3, owner.ID)

	req := &model.AssembleExamRequest{
		LessonID:      lesson.ID,
		Label:         "Đề tự chọn",
		Time:          30,
		NumberExams:   1,
		QuestionLabel: model.QuestionLabelEndDot,
		AnswerLabel:   model.AnswerLabelLowerDot,
	}

	// Same id twice within one entry.
	req.QuestionInfo = []model.QuestionInfo{
		{ChapterID: chapter.ID, QuestionIDs: []uuid.UUID{ids[0], ids[1], ids[0]}},
	}
	if _, err := f.svc.Assemble(context.Background(), owner, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// Same id across two entries for the same chapter.
	req.QuestionInfo = []model.QuestionInfo{
		{ChapterID: chapter.ID, QuestionIDs: []uuid.UUID{ids[0]}},
		{ChapterID: chapter.ID, QuestionIDs: []uuid.UUID{ids[0]}},
	}
	if _, err := f.svc.Assemble(context.Background(), owner, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateMetaKeepsSnapshot(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	newLabel := "Đề chính thức"
	newTime := 60
	updated, err := f.svc.UpdateMeta(context.Background(), owner, papers[0].ID, &model.UpdateExamRequest{
		Label: &newLabel,
		Time:  &newTime,
	})
	if err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if updated.Label != newLabel || updated.Time != newTime {
		t.Errorf("metadata not applied: %q %d", updated.Label, updated.Time)
	}

	stored, _ := f.exams.GetByID(context.Background(), papers[0].ID)
	if len(stored.Questions) != len(papers[0].Questions) {
		t.Errorf("snapshot changed size after metadata update")
	}
}

func TestUpdateMetaReassignNotifiesBothLessons(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	oldLesson := f.addLesson(owner.ID)
	newLesson := f.addLesson(owner.ID)

	exam := &model.Exam{
		Label:     "Đề giữa kỳ",
		OwnerID:   owner.ID,
		Status:    model.VisibilityPrivate,
		LessonRef: model.LessonRef{LessonID: oldLesson.ID, Name: oldLesson.Name},
	}
	f.exams.Insert(context.Background(), exam)
	f.lessons.AppendExamIDs(context.Background(), oldLesson.ID, []uuid.UUID{exam.ID}, 0)

	updated, err := f.svc.UpdateMeta(context.Background(), owner, exam.ID, &model.UpdateExamRequest{
		LessonID: &newLesson.ID,
	})
	if err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if updated.LessonRef.LessonID != newLesson.ID {
		t.Fatalf("exam still references lesson %s", updated.LessonRef.LessonID)
	}

	oldStored, _ := f.lessons.GetByID(context.Background(), oldLesson.ID)
	if len(oldStored.ExamIDs) != 0 {
		t.Errorf("old lesson still lists %d exam ids", len(oldStored.ExamIDs))
	}
	newStored, _ := f.lessons.GetByID(context.Background(), newLesson.ID)
	if len(newStored.ExamIDs) != 1 || newStored.ExamIDs[0] != exam.ID {
		t.Errorf("new lesson exam ids = %v, want [%s]", newStored.ExamIDs, exam.ID)
	}

	// The fan-out worker must refresh classes embedding either lesson.
	notified := f.queue.fanoutLessonIDs()
	if len(notified) != 2 || notified[0] != oldLesson.ID.String() || notified[1] != newLesson.ID.String() {
		t.Errorf("fan-out notified %v, want [%s %s]", notified, oldLesson.ID, newLesson.ID)
	}
}

func TestDeleteDetachesFromLesson(t *testing.T) {
	f := newExamFixture(t)
	owner := Caller{ID: 1}
	lesson := f.addLesson(owner.ID)
	chapter := f.addChapter(owner.ID, lesson)
	f.addQuestions(chapter.ID, model.LevelEasy, 6, owner.ID)
	f.addQuestions(chapter.ID, model.LevelHard, 4, owner.ID)

	papers, err := f.svc.Generate(context.Background(), owner, generateReq(lesson.ID, chapter.ID))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := f.svc.Delete(context.Background(), owner, papers[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	updated, _ := f.lessons.GetByID(context.Background(), lesson.ID)
	for _, id := range updated.ExamIDs {
		if id == papers[0].ID {
			t.Fatal("deleted exam id still referenced by lesson")
		}
	}
	if _, err := f.exams.GetByID(context.Background(), papers[0].ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatal("exam row should be gone")
	}
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// In-memory store fakes. Maps are keyed by id; no copy-on-read is done, so
// tests that mutate returned records should re-fetch to observe state.

type fakeChapterStore struct {
	chapters       map[uuid.UUID]*model.Chapter
	questionCounts map[uuid.UUID]int
}

func newFakeChapterStore() *fakeChapterStore {
	return &fakeChapterStore{
		chapters:       map[uuid.UUID]*model.Chapter{},
		questionCounts: map[uuid.UUID]int{},
	}
}

func (f *fakeChapterStore) GetByID(_ context.Context, id uuid.UUID) (*model.Chapter, error) {
	c, ok := f.chapters[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChapterStore) ListPaginated(_ context.Context, ownerID, limit, offset int, search string) ([]model.Chapter, int, error) {
	var out []model.Chapter
	for _, c := range f.chapters {
		if ownerID != 0 && c.OwnerID != ownerID && c.Status != model.VisibilityPublic {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeChapterStore) Create(_ context.Context, c *model.Chapter) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.chapters[c.ID] = &cp
	return nil
}

func (f *fakeChapterStore) Update(_ context.Context, c *model.Chapter) error {
	if _, ok := f.chapters[c.ID]; !ok {
		return ErrRecordNotFound
	}
	cp := *c
	f.chapters[c.ID] = &cp
	return nil
}

func (f *fakeChapterStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.chapters, id)
	return nil
}

func (f *fakeChapterStore) CountQuestions(_ context.Context, chapterID uuid.UUID) (int, error) {
	return f.questionCounts[chapterID], nil
}

func (f *fakeChapterStore) DetachLesson(_ context.Context, lessonID uuid.UUID) error {
	for _, c := range f.chapters {
		if c.LessonID != nil && *c.LessonID == lessonID {
			c.LessonID = nil
		}
	}
	return nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
	inExam    map[uuid.UUID]bool
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{
		questions: map[uuid.UUID]*model.Question{},
		inExam:    map[uuid.UUID]bool{},
	}
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) ListByChapter(_ context.Context, chapterID uuid.UUID) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.ChapterID == chapterID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListByChapterAndLevel(_ context.Context, chapterID uuid.UUID, level model.Level) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.ChapterID == chapterID && q.Level == level && q.Enable {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Question, error) {
	var out []model.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return ErrRecordNotFound
	}
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionStore) ReferencedByExam(_ context.Context, id uuid.UUID) (bool, error) {
	return f.inExam[id], nil
}

type fakeLessonStore struct {
	lessons map[uuid.UUID]*model.Lesson

	// appendRejections makes the next n AppendExamIDs calls fail their
	// version check, simulating concurrent writers.
	appendRejections int
	appendCalls      int
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{lessons: map[uuid.UUID]*model.Lesson{}}
}

func (f *fakeLessonStore) GetByID(_ context.Context, id uuid.UUID) (*model.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *l
	cp.ChapterIDs = append([]uuid.UUID(nil), l.ChapterIDs...)
	cp.ExamIDs = append([]uuid.UUID(nil), l.ExamIDs...)
	return &cp, nil
}

func (f *fakeLessonStore) ListPaginated(_ context.Context, ownerID, limit, offset int, search string) ([]model.Lesson, int, error) {
	var out []model.Lesson
	for _, l := range f.lessons {
		if ownerID != 0 && l.OwnerID != ownerID && l.Status != model.VisibilityPublic {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeLessonStore) Create(_ context.Context, l *model.Lesson) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	f.lessons[l.ID] = &cp
	return nil
}

func (f *fakeLessonStore) Update(_ context.Context, l *model.Lesson) error {
	stored, ok := f.lessons[l.ID]
	if !ok {
		return ErrRecordNotFound
	}
	version := stored.Version
	cp := *l
	cp.Version = version
	cp.ChapterIDs = stored.ChapterIDs
	cp.ExamIDs = stored.ExamIDs
	f.lessons[l.ID] = &cp
	return nil
}

func (f *fakeLessonStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.lessons, id)
	return nil
}

func (f *fakeLessonStore) AddChapter(_ context.Context, lessonID, chapterID uuid.UUID) error {
	l, ok := f.lessons[lessonID]
	if !ok {
		return ErrRecordNotFound
	}
	for _, id := range l.ChapterIDs {
		if id == chapterID {
			return nil
		}
	}
	l.ChapterIDs = append(l.ChapterIDs, chapterID)
	return nil
}

func (f *fakeLessonStore) RemoveChapter(_ context.Context, lessonID, chapterID uuid.UUID) error {
	l, ok := f.lessons[lessonID]
	if !ok {
		return ErrRecordNotFound
	}
	out := l.ChapterIDs[:0]
	for _, id := range l.ChapterIDs {
		if id != chapterID {
			out = append(out, id)
		}
	}
	l.ChapterIDs = out
	return nil
}

func (f *fakeLessonStore) AppendExamIDs(_ context.Context, lessonID uuid.UUID, examIDs []uuid.UUID, expectedVersion int) (bool, error) {
	f.appendCalls++
	l, ok := f.lessons[lessonID]
	if !ok {
		return false, ErrRecordNotFound
	}
	if f.appendRejections > 0 {
		f.appendRejections--
		l.Version++
		return false, nil
	}
	if l.Version != expectedVersion {
		return false, nil
	}
	l.ExamIDs = append(l.ExamIDs, examIDs...)
	l.Version++
	return true, nil
}

func (f *fakeLessonStore) RemoveExamID(_ context.Context, lessonID, examID uuid.UUID) error {
	l, ok := f.lessons[lessonID]
	if !ok {
		return ErrRecordNotFound
	}
	out := l.ExamIDs[:0]
	for _, id := range l.ExamIDs {
		if id != examID {
			out = append(out, id)
		}
	}
	l.ExamIDs = out
	l.Version++
	return nil
}

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: map[uuid.UUID]*model.Exam{}}
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) ListByLesson(_ context.Context, lessonID uuid.UUID) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if e.LessonRef.LessonID == lessonID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExamStore) ListPaginated(_ context.Context, ownerID, limit, offset int) ([]model.Exam, int, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if ownerID != 0 && e.OwnerID != ownerID && e.Status != model.VisibilityPublic {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeExamStore) Insert(_ context.Context, e *model.Exam) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	f.exams[e.ID] = &cp
	return nil
}

func (f *fakeExamStore) UpdateMeta(_ context.Context, e *model.Exam) error {
	stored, ok := f.exams[e.ID]
	if !ok {
		return ErrRecordNotFound
	}
	cp := *e
	// The snapshot is immutable; keep the stored copy.
	cp.Questions = stored.Questions
	cp.Scales = stored.Scales
	f.exams[e.ID] = &cp
	return nil
}

func (f *fakeExamStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.exams, id)
	return nil
}

func (f *fakeExamStore) RefreshLessonName(_ context.Context, lessonID uuid.UUID, name string) error {
	for _, e := range f.exams {
		if e.LessonRef.LessonID == lessonID {
			e.LessonRef.Name = name
		}
	}
	return nil
}

func (f *fakeExamStore) CountByLesson(_ context.Context, lessonID uuid.UUID) (int, error) {
	n := 0
	for _, e := range f.exams {
		if e.LessonRef.LessonID == lessonID {
			n++
		}
	}
	return n, nil
}

type fakeClassStore struct {
	classes map[uuid.UUID]*model.Class
}

func newFakeClassStore() *fakeClassStore {
	return &fakeClassStore{classes: map[uuid.UUID]*model.Class{}}
}

func (f *fakeClassStore) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClassStore) ExistsByCode(_ context.Context, ownerID int, code string) (bool, error) {
	for _, c := range f.classes {
		if c.OwnerID == ownerID && c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClassStore) ListPaginated(_ context.Context, ownerID, limit, offset int, search string) ([]model.Class, int, error) {
	var out []model.Class
	for _, c := range f.classes {
		if ownerID != 0 && c.OwnerID != ownerID {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeClassStore) ListByLesson(_ context.Context, lessonID uuid.UUID) ([]model.Class, error) {
	var out []model.Class
	for _, c := range f.classes {
		for _, l := range c.Lessons {
			if l.LessonID == lessonID {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeClassStore) Create(_ context.Context, c *model.Class) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) Update(_ context.Context, c *model.Class) error {
	if _, ok := f.classes[c.ID]; !ok {
		return ErrRecordNotFound
	}
	cp := *c
	f.classes[c.ID] = &cp
	return nil
}

func (f *fakeClassStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.classes, id)
	return nil
}

// redisLog is a client hook that records commands instead of sending them.
// It never calls the next hook, so no connection is ever dialed; the
// best-effort cache and queue writes succeed instantly and stay observable.
type redisLog struct {
	mu   sync.Mutex
	cmds []redis.Cmder
}

func newRecordingRedis() (*redis.Client, *redisLog) {
	log := &redisLog{}
	rdb := redis.NewClient(&redis.Options{Addr: "recorded:0"})
	rdb.AddHook(log)
	return rdb, log
}

func (l *redisLog) DialHook(next redis.DialHook) redis.DialHook { return next }

func (l *redisLog) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		l.mu.Lock()
		l.cmds = append(l.cmds, cmd)
		l.mu.Unlock()
		return nil
	}
}

func (l *redisLog) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		l.mu.Lock()
		l.cmds = append(l.cmds, cmds...)
		l.mu.Unlock()
		return nil
	}
}

// fanoutLessonIDs returns the lesson ids pushed onto the fan-out queue, in
// push order.
func (l *redisLog) fanoutLessonIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, cmd := range l.cmds {
		args := cmd.Args()
		if len(args) < 3 || args[0] != "rpush" || args[1] != config.WorkerKey.LessonFanoutQueue {
			continue
		}
		raw, ok := args[2].([]byte)
		if !ok {
			continue
		}
		var msg struct {
			LessonID string `json:"lesson_id"`
		}
		if err := json.Unmarshal(raw, &msg); err == nil {
			out = append(out, msg.LessonID)
		}
	}
	return out
}

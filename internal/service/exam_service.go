package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultMaxScore is the grading scale of a generated paper.
const DefaultMaxScore = 10.0

// appendRetries bounds the compare-and-swap loop on the lesson exam list.
const appendRetries = 3

// defaultSKUBase is used when a request does not name its own SKU base.
const defaultSKUBase = "DE"

// ExamService assembles and generates exam papers: scale validation,
// sampling, shuffling, labeling, snapshotting and the lesson/class link
// bookkeeping that follows.
type ExamService struct {
	exams    ExamStore
	lessons  LessonStore
	chapters ChapterStore
	sampler  *ChapterService
	cfg      *config.Config
	rdb      *redis.Client
	newRand  func() *rand.Rand
	log      zerolog.Logger
}

// NewExamService creates a new ExamService. newRand supplies the random
// source per generated paper; pass nil for the default time-seeded source.
func NewExamService(
	exams ExamStore,
	lessons LessonStore,
	chapters ChapterStore,
	sampler *ChapterService,
	cfg *config.Config,
	rdb *redis.Client,
	newRand func() *rand.Rand,
	log zerolog.Logger,
) *ExamService {
	if newRand == nil {
		newRand = generator.NewTimeRand
	}
	return &ExamService{
		exams:    exams,
		lessons:  lessons,
		chapters: chapters,
		sampler:  sampler,
		cfg:      cfg,
		rdb:      rdb,
		newRand:  newRand,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam visible to the caller.
func (s *ExamService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if exam.Status != model.VisibilityPublic && !caller.CanMutate(exam.OwnerID) {
		return nil, ErrRecordUnavailable
	}
	return exam, nil
}

// List retrieves exams with pagination.
func (s *ExamService) List(ctx context.Context, caller Caller, page, perPage int) ([]model.Exam, int, int, error) {
	page, perPage = clampPage(page, perPage)

	ownerID := caller.ID
	if caller.IsAdmin {
		ownerID = 0
	}

	exams, total, err := s.exams.ListPaginated(ctx, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, 0, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, total, perPage, nil
}

// ListByLesson retrieves all exams of one lesson, filtered to those visible
// to the caller.
func (s *ExamService) ListByLesson(ctx context.Context, caller Caller, lessonID uuid.UUID) ([]model.Exam, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !lesson.VisibleTo(caller.ID, caller.IsAdmin) {
		return nil, ErrRecordUnavailable
	}

	exams, err := s.exams.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Exam, 0, len(exams))
	for _, e := range exams {
		if e.Status == model.VisibilityPublic || caller.CanMutate(e.OwnerID) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

// Generate builds numberExams papers from a weighted scale list: every scale
// draws percent% of totalQuestions from one chapter+level bucket, the pooled
// draw is reshuffled, relabeled and snapshotted independently per paper.
// All papers of one request share the same underlying question set.
func (s *ExamService) Generate(ctx context.Context, caller Caller, req *model.GenerateExamRequest) ([]model.Exam, error) {
	if req.NumberExams > s.cfg.MaxPapersPerRequest || req.TotalQuestions > s.cfg.MaxQuestionsPerPaper {
		return nil, ErrGenerationLimit
	}

	lesson, err := s.lessons.GetByID(ctx, req.LessonID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	// Ownership is strict here: generation writes into the lesson, and only
	// its owner may do that.
	if lesson.OwnerID != caller.ID {
		return nil, ErrNoPermission
	}

	if sum := model.SumPercent(req.Scales); sum != 100 {
		return nil, &InvalidScaleError{Sum: sum}
	}

	// Resolve every scale into a realized quantity before sampling anything.
	results := make([]model.ScaleResult, len(req.Scales))
	for i, sc := range req.Scales {
		raw := sc.Percent * req.TotalQuestions
		if raw%100 != 0 {
			return nil, &InvalidScaleError{
				Chapter: sc.ChapterID,
				Reason: fmt.Sprintf("%d%% of %d questions is not a whole number",
					sc.Percent, req.TotalQuestions),
			}
		}
		results[i] = model.ScaleResult{
			ChapterID:   sc.ChapterID,
			Percent:     sc.Percent,
			Level:       sc.Level,
			QuestionQty: raw / 100,
			Score:       float64(sc.Percent) / 100 * DefaultMaxScore,
		}
	}

	var pool []model.Question
	for i, sc := range req.Scales {
		draw, err := s.sampler.Sample(ctx, caller, sc.ChapterID, sc.Level, results[i].QuestionQty)
		if err != nil {
			return nil, err
		}
		pool = append(pool, draw...)
	}

	papers, err := s.buildPapers(caller, lesson, pool, results, req.NumberExams, paperSpec{
		Label:         req.Label,
		Time:          req.Time,
		SKUBase:       req.SKU,
		QuestionLabel: req.QuestionLabel,
		AnswerLabel:   req.AnswerLabel,
	})
	if err != nil {
		return nil, err
	}

	return s.persistPapers(ctx, lesson, papers)
}

// Assemble builds numberExams papers from hand-picked questions. Every named
// chapter must be linked to the lesson and visible to the caller, every
// question must belong to the chapter it was submitted under, and a question
// may be picked at most once.
func (s *ExamService) Assemble(ctx context.Context, caller Caller, req *model.AssembleExamRequest) ([]model.Exam, error) {
	if req.NumberExams > s.cfg.MaxPapersPerRequest {
		return nil, ErrGenerationLimit
	}

	lesson, err := s.lessons.GetByID(ctx, req.LessonID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(lesson.OwnerID) {
		return nil, ErrNoPermission
	}

	var pool []model.Question
	seen := make(map[uuid.UUID]bool)
	for _, info := range req.QuestionInfo {
		chapter, err := s.chapters.GetByID(ctx, info.ChapterID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		if !chapter.VisibleTo(caller.ID, caller.IsAdmin) {
			return nil, ErrRecordUnavailable
		}
		if !lesson.HasChapter(info.ChapterID) {
			return nil, &ChapterNotInLessonError{ChapterID: info.ChapterID, LessonID: lesson.ID}
		}

		questions, err := s.sampler.questions.ListByIDs(ctx, info.QuestionIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]model.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}
		for _, qid := range info.QuestionIDs {
			if seen[qid] {
				return nil, fmt.Errorf("%w: question %s picked more than once", ErrInvalidInput, qid)
			}
			seen[qid] = true
			q, ok := byID[qid]
			if !ok {
				return nil, fmt.Errorf("%w: question %s", ErrRecordNotFound, qid)
			}
			if q.ChapterID != info.ChapterID {
				return nil, &QuestionNotInChapterError{QuestionID: qid, ChapterID: info.ChapterID}
			}
			pool = append(pool, q)
		}
	}

	if len(pool) > s.cfg.MaxQuestionsPerPaper {
		return nil, ErrGenerationLimit
	}

	papers, err := s.buildPapers(caller, lesson, pool, summarizeScales(pool), req.NumberExams, paperSpec{
		Label:         req.Label,
		Time:          req.Time,
		SKUBase:       req.SKU,
		QuestionLabel: req.QuestionLabel,
		AnswerLabel:   req.AnswerLabel,
	})
	if err != nil {
		return nil, err
	}

	return s.persistPapers(ctx, lesson, papers)
}

// UpdateMeta modifies an exam's mutable metadata. The question snapshot is
// untouchable after creation; only label, time, status, enable and the
// lesson association may change.
func (s *ExamService) UpdateMeta(ctx context.Context, caller Caller, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(exam.OwnerID) {
		return nil, ErrNoPermission
	}

	if req.Label != nil {
		exam.Label = *req.Label
	}
	if req.Time != nil {
		exam.Time = *req.Time
	}
	if req.Status != nil {
		exam.Status = *req.Status
	}
	if req.Enable != nil {
		exam.Enable = *req.Enable
	}

	if req.LessonID != nil && *req.LessonID != exam.LessonRef.LessonID {
		newLesson, err := s.lessons.GetByID(ctx, *req.LessonID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		if !caller.CanMutate(newLesson.OwnerID) {
			return nil, ErrNoPermission
		}

		// Detach from the old lesson, attach to the new, refresh the
		// denormalized name. Partial failure leaves the remaining steps
		// undone; there is no compensating rollback.
		if err := s.lessons.RemoveExamID(ctx, exam.LessonRef.LessonID, exam.ID); err != nil {
			return nil, err
		}
		if err := s.appendWithRetry(ctx, newLesson.ID, []uuid.UUID{exam.ID}); err != nil {
			return nil, err
		}
		// Both lessons' exam sets changed; classes embedding either one
		// must be refreshed.
		s.enqueueFanout(ctx, exam.LessonRef.LessonID)
		s.enqueueFanout(ctx, newLesson.ID)
		exam.LessonRef = model.LessonRef{LessonID: newLesson.ID, Name: newLesson.Name}
	}

	if err := s.exams.UpdateMeta(ctx, exam); err != nil {
		return nil, err
	}
	s.cachePaper(ctx, exam)
	return exam, nil
}

// Delete removes an exam and detaches it from its lesson.
func (s *ExamService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !caller.CanMutate(exam.OwnerID) {
		return ErrNoPermission
	}

	if err := s.lessons.RemoveExamID(ctx, exam.LessonRef.LessonID, exam.ID); err != nil {
		return err
	}
	if err := s.exams.Delete(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, config.CacheKey.ExamPayloadKey(id.String()))
	s.enqueueFanout(ctx, exam.LessonRef.LessonID)
	return nil
}

// ─── Paper construction ─────────────────────────────────────────────────────

type paperSpec struct {
	Label         string
	Time          int
	SKUBase       string
	QuestionLabel model.QuestionLabelScheme
	AnswerLabel   model.AnswerLabelScheme
}

// buildPapers snapshots the pool into n independent papers. Each paper
// reshuffles question and answer order and reassigns labels from scratch.
func (s *ExamService) buildPapers(caller Caller, lesson *model.Lesson, pool []model.Question, scales []model.ScaleResult, n int, spec paperSpec) ([]*model.Exam, error) {
	base := spec.SKUBase
	if base == "" {
		base = defaultSKUBase
	}

	papers := make([]*model.Exam, 0, n)
	for i := 0; i < n; i++ {
		r := s.newRand()

		snapshots := make([]model.SnapshotQuestion, len(pool))
		for j := range pool {
			snapshots[j] = model.Snapshot(&pool[j])
		}
		generator.Shuffle(r, snapshots)

		for j := range snapshots {
			label, err := generator.FormatQuestionLabel(spec.QuestionLabel, j+1)
			if err != nil {
				return nil, err
			}
			snapshots[j].Label = label

			generator.Shuffle(r, snapshots[j].Answers)
			for a := range snapshots[j].Answers {
				answerLabel, err := generator.FormatAnswerLabel(spec.AnswerLabel, a+1)
				if err != nil {
					return nil, err
				}
				snapshots[j].Answers[a].Label = answerLabel
			}
		}

		papers = append(papers, &model.Exam{
			Label:     spec.Label,
			Time:      spec.Time,
			SKU:       generator.NewSKU(r, base),
			MaxScore:  DefaultMaxScore,
			Scales:    scales,
			Questions: snapshots,
			Status:    model.VisibilityPrivate,
			Enable:    true,
			OwnerID:   caller.ID,
			LessonRef: model.LessonRef{LessonID: lesson.ID, Name: lesson.Name},
		})
	}
	return papers, nil
}

// persistPapers inserts the generated papers, appends their ids to the
// lesson's exam list and notifies the class fan-out.
func (s *ExamService) persistPapers(ctx context.Context, lesson *model.Lesson, papers []*model.Exam) ([]model.Exam, error) {
	ids := make([]uuid.UUID, 0, len(papers))
	for _, p := range papers {
		if err := s.exams.Insert(ctx, p); err != nil {
			return nil, fmt.Errorf("insert exam: %w", err)
		}
		ids = append(ids, p.ID)
		s.cachePaper(ctx, p)
	}

	if err := s.appendWithRetry(ctx, lesson.ID, ids); err != nil {
		return nil, err
	}
	s.enqueueFanout(ctx, lesson.ID)

	s.log.Info().
		Str("lesson_id", lesson.ID.String()).
		Int("papers", len(papers)).
		Msg("Exam papers generated")

	out := make([]model.Exam, len(papers))
	for i, p := range papers {
		out[i] = *p
	}
	return out, nil
}

// appendWithRetry appends exam ids to a lesson's exam list under optimistic
// versioning. A failed compare-and-swap re-reads the lesson and tries again
// so a concurrent writer's append is never lost.
func (s *ExamService) appendWithRetry(ctx context.Context, lessonID uuid.UUID, examIDs []uuid.UUID) error {
	for attempt := 0; attempt < appendRetries; attempt++ {
		lesson, err := s.lessons.GetByID(ctx, lessonID)
		if err != nil {
			return mapNotFound(err)
		}
		ok, err := s.lessons.AppendExamIDs(ctx, lessonID, examIDs, lesson.Version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.log.Debug().
			Str("lesson_id", lessonID.String()).
			Int("attempt", attempt+1).
			Msg("Lesson version moved, retrying append")
	}
	return ErrConcurrentUpdate
}

// cachePaper stores the paper payload in Redis for cheap repeated reads.
// Cache failures are logged, never surfaced: the database copy is canonical.
func (s *ExamService) cachePaper(ctx context.Context, e *model.Exam) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", e.ID.String()).Msg("Marshal paper payload failed")
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamPayloadKey(e.ID.String()), payload, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", e.ID.String()).Msg("Cache paper failed")
	}
}

// GetCachedPaper retrieves the cached paper payload, falling back to the
// database on a cache miss.
func (s *ExamService) GetCachedPaper(ctx context.Context, caller Caller, id uuid.UUID) (*model.Exam, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(id.String())).Bytes()
	if err == nil {
		var exam model.Exam
		if err := json.Unmarshal(data, &exam); err == nil {
			if exam.Status != model.VisibilityPublic && !caller.CanMutate(exam.OwnerID) {
				return nil, ErrRecordUnavailable
			}
			return &exam, nil
		}
	}
	exam, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	s.cachePaper(ctx, exam)
	return exam, nil
}

// enqueueFanout pushes a lesson id onto the fan-out queue so the worker can
// refresh the exam lists embedded in classes. Best effort.
func (s *ExamService) enqueueFanout(ctx context.Context, lessonID uuid.UUID) {
	payload, _ := json.Marshal(map[string]string{"lesson_id": lessonID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.LessonFanoutQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("lesson_id", lessonID.String()).Msg("Enqueue fan-out failed")
	}
}

// summarizeScales derives the per-(chapter, level) percentage breakdown of a
// hand-picked pool. Bookkeeping only; not a sampling constraint.
func summarizeScales(pool []model.Question) []model.ScaleResult {
	type bucket struct {
		chapterID uuid.UUID
		level     model.Level
	}
	counts := map[bucket]int{}
	var order []bucket
	for _, q := range pool {
		b := bucket{q.ChapterID, q.Level}
		if _, seen := counts[b]; !seen {
			order = append(order, b)
		}
		counts[b]++
	}

	total := len(pool)
	results := make([]model.ScaleResult, len(order))
	for i, b := range order {
		n := counts[b]
		results[i] = model.ScaleResult{
			ChapterID:   b.chapterID,
			Level:       b.level,
			Percent:     n * 100 / total,
			QuestionQty: n,
			Score:       float64(n) / float64(total) * DefaultMaxScore,
		}
	}
	return results
}

package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

// ChapterService handles chapter business logic, including the question
// sampling primitive the exam generator draws from.
type ChapterService struct {
	chapters  ChapterStore
	questions QuestionStore
	lessons   LessonStore
	newRand   func() *rand.Rand
	log       zerolog.Logger
}

// NewChapterService creates a new ChapterService. newRand supplies the random
// source per sampling call; pass nil for the default time-seeded source.
func NewChapterService(chapters ChapterStore, questions QuestionStore, lessons LessonStore, newRand func() *rand.Rand, log zerolog.Logger) *ChapterService {
	if newRand == nil {
		newRand = generator.NewTimeRand
	}
	return &ChapterService{
		chapters:  chapters,
		questions: questions,
		lessons:   lessons,
		newRand:   newRand,
		log:       log.With().Str("component", "chapter_service").Logger(),
	}
}

// GetByID retrieves a chapter visible to the caller.
func (s *ChapterService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*model.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !chapter.VisibleTo(caller.ID, caller.IsAdmin) {
		return nil, ErrRecordUnavailable
	}
	return chapter, nil
}

// List retrieves chapters with pagination.
func (s *ChapterService) List(ctx context.Context, caller Caller, page, perPage int, search string) ([]model.Chapter, int, int, error) {
	page, perPage = clampPage(page, perPage)

	ownerID := caller.ID
	if caller.IsAdmin {
		ownerID = 0
	}

	chapters, total, err := s.chapters.ListPaginated(ctx, ownerID, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, 0, 0, err
	}
	if chapters == nil {
		chapters = []model.Chapter{}
	}
	return chapters, total, perPage, nil
}

// Create inserts a new chapter owned by the caller. If a lesson is given, the
// lesson's chapter list is updated in the same operation.
func (s *ChapterService) Create(ctx context.Context, caller Caller, req *model.CreateChapterRequest) (*model.Chapter, error) {
	chapter := &model.Chapter{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Status:      req.Status,
		Enable:      true,
		OwnerID:     caller.ID,
	}
	if chapter.Status == "" {
		chapter.Status = model.VisibilityPrivate
	}

	if req.LessonID != nil {
		lesson, err := s.lessons.GetByID(ctx, *req.LessonID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		if !caller.CanMutate(lesson.OwnerID) {
			return nil, ErrNoPermission
		}
		chapter.LessonID = req.LessonID
	}

	if err := s.chapters.Create(ctx, chapter); err != nil {
		return nil, err
	}
	if chapter.LessonID != nil {
		if err := s.lessons.AddChapter(ctx, *chapter.LessonID, chapter.ID); err != nil {
			return nil, err
		}
	}
	return chapter, nil
}

// Update modifies a chapter. A lesson re-assignment detaches the chapter from
// its old lesson and attaches it to the new one as one logical operation;
// there is no rollback of earlier steps when a later one fails.
func (s *ChapterService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *model.UpdateChapterRequest) (*model.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(chapter.OwnerID) {
		return nil, ErrNoPermission
	}

	if req.Name != nil {
		chapter.Name = *req.Name
	}
	if req.Label != nil {
		chapter.Label = *req.Label
	}
	if req.Description != nil {
		chapter.Description = *req.Description
	}
	if req.Status != nil {
		chapter.Status = *req.Status
	}
	if req.Enable != nil {
		chapter.Enable = *req.Enable
	}

	oldLesson := chapter.LessonID
	if req.LessonID != nil && (oldLesson == nil || *oldLesson != *req.LessonID) {
		lesson, err := s.lessons.GetByID(ctx, *req.LessonID)
		if err != nil {
			return nil, mapNotFound(err)
		}
		if !caller.CanMutate(lesson.OwnerID) {
			return nil, ErrNoPermission
		}

		// Detach from the old parent, attach to the new one.
		if oldLesson != nil {
			if err := s.lessons.RemoveChapter(ctx, *oldLesson, chapter.ID); err != nil {
				return nil, err
			}
		}
		if err := s.lessons.AddChapter(ctx, lesson.ID, chapter.ID); err != nil {
			return nil, err
		}
		chapter.LessonID = req.LessonID

		s.log.Info().
			Str("chapter_id", chapter.ID.String()).
			Str("lesson_id", lesson.ID.String()).
			Msg("Chapter re-assigned to lesson")
	}

	if err := s.chapters.Update(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// Delete removes a chapter. Blocked while it still holds questions.
func (s *ChapterService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !caller.CanMutate(chapter.OwnerID) {
		return ErrNoPermission
	}

	n, err := s.chapters.CountQuestions(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrRecordInUse
	}

	if chapter.LessonID != nil {
		if err := s.lessons.RemoveChapter(ctx, *chapter.LessonID, chapter.ID); err != nil {
			return err
		}
	}
	return s.chapters.Delete(ctx, id)
}

// Sample draws quantity questions of the given level from a chapter,
// uniformly at random without replacement. The stored pool is never mutated;
// the result is a fresh slice of copies. Fails loudly when the bucket holds
// fewer questions than requested.
func (s *ChapterService) Sample(ctx context.Context, caller Caller, chapterID uuid.UUID, level model.Level, quantity int) ([]model.Question, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !chapter.VisibleTo(caller.ID, caller.IsAdmin) {
		return nil, ErrRecordUnavailable
	}

	pool, err := s.questions.ListByChapterAndLevel(ctx, chapterID, level)
	if err != nil {
		return nil, err
	}
	if len(pool) < quantity {
		return nil, &InsufficientQuestionsError{
			ChapterID:   chapter.ID,
			ChapterName: chapter.Name,
			Level:       level,
			Available:   len(pool),
			Required:    quantity,
		}
	}

	return generator.Pick(s.newRand(), pool, quantity), nil
}

// mapNotFound converts the storage layer's no-rows error into the domain's
// not-found error.
func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordNotFound
	}
	return err
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/config"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LessonService manages lessons and keeps the denormalized lesson name
// carried by exams and classes in sync when a lesson is renamed.
type LessonService struct {
	lessons  LessonStore
	chapters ChapterStore
	exams    ExamStore
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewLessonService(lessons LessonStore, chapters ChapterStore, exams ExamStore, rdb *redis.Client, log zerolog.Logger) *LessonService {
	return &LessonService{
		lessons:  lessons,
		chapters: chapters,
		exams:    exams,
		rdb:      rdb,
		log:      log.With().Str("component", "lesson_service").Logger(),
	}
}

// GetByID retrieves a lesson visible to the caller.
func (s *LessonService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !lesson.VisibleTo(caller.ID, caller.IsAdmin) {
		return nil, ErrRecordUnavailable
	}
	return lesson, nil
}

// List retrieves lessons with pagination and optional name search.
func (s *LessonService) List(ctx context.Context, caller Caller, page, perPage int, search string) ([]model.Lesson, int, int, error) {
	page, perPage = clampPage(page, perPage)

	ownerID := caller.ID
	if caller.IsAdmin {
		ownerID = 0
	}

	lessons, total, err := s.lessons.ListPaginated(ctx, ownerID, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, 0, 0, err
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	return lessons, total, perPage, nil
}

// Create creates a new lesson owned by the caller.
func (s *LessonService) Create(ctx context.Context, caller Caller, req *model.CreateLessonRequest) (*model.Lesson, error) {
	lesson := &model.Lesson{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Status:      req.Status,
		Enable:      true,
		OwnerID:     caller.ID,
	}
	if lesson.Status == "" {
		lesson.Status = model.VisibilityPrivate
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.log.Info().Str("lesson_id", lesson.ID.String()).Msg("Lesson created")
	return lesson, nil
}

// Update modifies a lesson. Renaming a lesson sweeps the new name to every
// exam that carries it and notifies the class fan-out so embedded entries
// follow. The sweep and the notification are not transactional with the
// rename; the fan-out worker converges them.
func (s *LessonService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *model.UpdateLessonRequest) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(lesson.OwnerID) {
		return nil, ErrNoPermission
	}

	renamed := false
	if req.Name != nil && *req.Name != lesson.Name {
		lesson.Name = *req.Name
		renamed = true
	}
	if req.Label != nil {
		lesson.Label = *req.Label
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.Status != nil {
		lesson.Status = *req.Status
	}
	if req.Enable != nil {
		lesson.Enable = *req.Enable
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, err
	}

	if renamed {
		if err := s.exams.RefreshLessonName(ctx, lesson.ID, lesson.Name); err != nil {
			return nil, err
		}
		s.enqueueFanout(ctx, lesson.ID)
		s.log.Info().Str("lesson_id", lesson.ID.String()).Str("name", lesson.Name).Msg("Lesson renamed, propagated")
	}
	return lesson, nil
}

// Delete removes a lesson. A lesson that still has exams cannot be deleted;
// chapters survive and are detached instead.
func (s *LessonService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !caller.CanMutate(lesson.OwnerID) {
		return ErrNoPermission
	}

	count, err := s.exams.CountByLesson(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRecordInUse
	}

	if err := s.chapters.DetachLesson(ctx, id); err != nil {
		return err
	}
	if err := s.lessons.Delete(ctx, id); err != nil {
		return err
	}
	s.enqueueFanout(ctx, id)
	s.log.Info().Str("lesson_id", id.String()).Msg("Lesson deleted")
	return nil
}

func (s *LessonService) enqueueFanout(ctx context.Context, lessonID uuid.UUID) {
	payload, _ := json.Marshal(map[string]string{"lesson_id": lessonID.String()})
	if err := s.rdb.RPush(ctx, config.WorkerKey.LessonFanoutQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("lesson_id", lessonID.String()).Msg("Enqueue fan-out failed")
	}
}

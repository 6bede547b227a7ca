package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

// ClassService manages classes and the lesson entries embedded in them.
type ClassService struct {
	classes ClassStore
	lessons LessonStore
	log     zerolog.Logger
}

func NewClassService(classes ClassStore, lessons LessonStore, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes: classes,
		lessons: lessons,
		log:     log.With().Str("component", "class_service").Logger(),
	}
}

// GetByID retrieves a class owned by the caller.
func (s *ClassService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(class.OwnerID) {
		return nil, ErrNoPermission
	}
	return class, nil
}

// List retrieves the caller's classes with pagination.
func (s *ClassService) List(ctx context.Context, caller Caller, page, perPage int, search string) ([]model.Class, int, int, error) {
	page, perPage = clampPage(page, perPage)

	ownerID := caller.ID
	if caller.IsAdmin {
		ownerID = 0
	}

	classes, total, err := s.classes.ListPaginated(ctx, ownerID, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, 0, 0, err
	}
	if classes == nil {
		classes = []model.Class{}
	}
	return classes, total, perPage, nil
}

// Create creates a new class. Code must be unique among the owner's classes.
func (s *ClassService) Create(ctx context.Context, caller Caller, req *model.CreateClassRequest) (*model.Class, error) {
	exists, err := s.classes.ExistsByCode(ctx, caller.ID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRecordExisted
	}

	class := &model.Class{
		Name:      req.Name,
		Code:      req.Code,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
		Lessons:   []model.ClassLesson{},
		OwnerID:   caller.ID,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}
	s.log.Info().Str("class_id", class.ID.String()).Str("code", class.Code).Msg("Class created")
	return class, nil
}

// Update modifies a class. Supplying LessonIDs replaces the embedded lesson
// set; each lesson is re-embedded with its current name and exam list.
func (s *ClassService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *model.UpdateClassRequest) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(class.OwnerID) {
		return nil, ErrNoPermission
	}

	if req.Code != nil && *req.Code != class.Code {
		exists, err := s.classes.ExistsByCode(ctx, class.OwnerID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrRecordExisted
		}
		class.Code = *req.Code
	}
	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.StartYear != nil {
		class.StartYear = *req.StartYear
	}
	if req.EndYear != nil {
		if *req.EndYear < class.StartYear {
			return nil, ErrInvalidInput
		}
		class.EndYear = *req.EndYear
	}

	if req.LessonIDs != nil {
		embedded := make([]model.ClassLesson, 0, len(*req.LessonIDs))
		for _, lessonID := range *req.LessonIDs {
			lesson, err := s.lessons.GetByID(ctx, lessonID)
			if err != nil {
				return nil, mapNotFound(err)
			}
			if !lesson.VisibleTo(caller.ID, caller.IsAdmin) {
				return nil, ErrRecordUnavailable
			}
			embedded = append(embedded, model.ClassLesson{
				LessonID: lesson.ID,
				Name:     lesson.Name,
				ExamIDs:  lesson.ExamIDs,
			})
		}
		class.Lessons = embedded
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// Delete removes a class. Lessons and exams are untouched.
func (s *ClassService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !caller.CanMutate(class.OwnerID) {
		return ErrNoPermission
	}
	return s.classes.Delete(ctx, id)
}

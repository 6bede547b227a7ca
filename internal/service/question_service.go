package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/rs/zerolog"
)

// Uploader stores an uploaded file and returns its public path.
type Uploader interface {
	Store(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// QuestionService manages the question bank: answer invariants, fill-in
// validation and server-side distractor generation.
type QuestionService struct {
	questions QuestionStore
	chapters  ChapterStore
	uploader  Uploader
	newRand   func() *rand.Rand
	log       zerolog.Logger
}

func NewQuestionService(questions QuestionStore, chapters ChapterStore, uploader Uploader, newRand func() *rand.Rand, log zerolog.Logger) *QuestionService {
	if newRand == nil {
		newRand = generator.NewTimeRand
	}
	return &QuestionService{
		questions: questions,
		chapters:  chapters,
		uploader:  uploader,
		newRand:   newRand,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// GetByID retrieves a question, subject to the visibility of its chapter.
func (s *QuestionService) GetByID(ctx context.Context, caller Caller, id uuid.UUID) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, err := s.visibleChapter(ctx, caller, question.ChapterID); err != nil {
		return nil, err
	}
	return question, nil
}

// ListByChapter retrieves all questions of a chapter visible to the caller.
func (s *QuestionService) ListByChapter(ctx context.Context, caller Caller, chapterID uuid.UUID) ([]model.Question, error) {
	if _, err := s.visibleChapter(ctx, caller, chapterID); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// Create adds a question to a chapter. Picture is optional; an upload failure
// aborts the whole create. For FILL_IN questions the submitted correct answer
// is validated against the content's blank layout and wrong choices are
// generated by permuting its segments.
func (s *QuestionService) Create(ctx context.Context, caller Caller, req *model.CreateQuestionRequest, picture *multipart.FileHeader) (*model.Question, error) {
	chapter, err := s.visibleChapter(ctx, caller, req.ChapterID)
	if err != nil {
		return nil, err
	}
	if !caller.CanMutate(chapter.OwnerID) {
		return nil, ErrNoPermission
	}

	answers, err := s.buildAnswers(caller, req.Category, req.Content, req.Answers, req.DistractorQty)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		ChapterID: req.ChapterID,
		Content:   req.Content,
		Remark:    req.Remark,
		Level:     req.Level,
		Category:  req.Category,
		Answers:   answers,
		OwnerID:   caller.ID,
		Enable:    true,
		Status:    req.Status,
	}
	if question.Status == "" {
		question.Status = model.VisibilityPrivate
	}

	if picture != nil {
		path, err := s.uploader.Store(ctx, picture)
		if err != nil {
			s.log.Error().Err(err).Str("chapter_id", req.ChapterID.String()).Msg("Picture upload failed")
			return nil, ErrUploadFailed
		}
		question.Picture = &path
	}

	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	s.log.Info().Str("question_id", question.ID.String()).Str("category", string(question.Category)).Msg("Question created")
	return question, nil
}

// Update modifies a question. Replacing answers replaces the whole set; the
// same invariants as on create apply. Exams that snapshot the old version are
// unaffected.
func (s *QuestionService) Update(ctx context.Context, caller Caller, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !caller.CanMutate(question.OwnerID) {
		return nil, ErrNoPermission
	}

	if req.Content != nil {
		question.Content = *req.Content
	}
	if req.Remark != nil {
		question.Remark = *req.Remark
	}
	if req.Level != nil {
		question.Level = *req.Level
	}
	if req.Status != nil {
		question.Status = *req.Status
	}
	if req.Enable != nil {
		question.Enable = *req.Enable
	}
	if req.Answers != nil {
		answers, err := s.buildAnswers(caller, question.Category, question.Content, req.Answers, 0)
		if err != nil {
			return nil, err
		}
		question.Answers = answers
	} else if req.Content != nil && question.Category == model.CategoryFillIn {
		// Content changed but answers did not: the blank layout must still
		// line up with every existing choice.
		for _, a := range question.Answers {
			if err := generator.ValidateFillIn(question.Content, a.Value); err != nil {
				return nil, err
			}
		}
	}

	if err := s.questions.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// Delete removes a question. A question referenced by an exam snapshot cannot
// be deleted; disable it instead.
func (s *QuestionService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !caller.CanMutate(question.OwnerID) {
		return ErrNoPermission
	}

	referenced, err := s.questions.ReferencedByExam(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrRecordInUse
	}
	return s.questions.Delete(ctx, id)
}

func (s *QuestionService) visibleChapter(ctx context.Context, caller Caller, chapterID uuid.UUID) (*model.Chapter, error) {
	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !chapter.VisibleTo(caller.ID, caller.IsAdmin) {
		return nil, ErrRecordUnavailable
	}
	return chapter, nil
}

// buildAnswers validates the submitted answer set against the category's
// invariants and materializes it. For FILL_IN, exactly one correct answer is
// expected and distractorQty wrong choices are generated from it.
func (s *QuestionService) buildAnswers(caller Caller, category model.QuestionCategory, content string, inputs []model.AnswerInput, distractorQty int) ([]model.Answer, error) {
	correct := 0
	for _, in := range inputs {
		if in.IsCorrect {
			correct++
			if in.Score == nil {
				return nil, fmt.Errorf("%w: correct answer %q has no score", ErrInvalidAnswers, in.Value)
			}
		}
	}

	switch category {
	case model.CategoryMultipleChoice:
		if correct < 1 {
			return nil, fmt.Errorf("%w: at least one correct answer required", ErrInvalidAnswers)
		}
	default:
		if correct != 1 {
			return nil, fmt.Errorf("%w: exactly one correct answer required, got %d", ErrInvalidAnswers, correct)
		}
	}

	answers := make([]model.Answer, 0, len(inputs)+distractorQty)
	for _, in := range inputs {
		answers = append(answers, model.Answer{
			ID:        uuid.New(),
			Value:     in.Value,
			Score:     in.Score,
			IsCorrect: in.IsCorrect,
			Remark:    in.Remark,
			OwnerID:   caller.ID,
		})
	}

	if category == model.CategoryFillIn {
		var correctValue string
		for _, a := range answers {
			if a.IsCorrect {
				correctValue = a.Value
			}
		}
		if err := generator.ValidateFillIn(content, correctValue); err != nil {
			return nil, err
		}
		if distractorQty > 0 {
			wrong, err := generator.Distractors(s.newRand(), correctValue, distractorQty)
			if err != nil {
				return nil, err
			}
			for _, w := range wrong {
				answers = append(answers, model.Answer{
					ID:      uuid.New(),
					Value:   w,
					OwnerID: caller.ID,
				})
			}
		}
	}

	return answers, nil
}

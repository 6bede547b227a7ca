package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/papergen/papergen-backend/internal/generator"
	"github.com/papergen/papergen-backend/internal/response"
	"github.com/papergen/papergen-backend/internal/service"
)

// failServiceError maps service-layer errors onto the response envelope.
// Typed errors carry detail worth surfacing; sentinels map straight to codes.
func failServiceError(c *gin.Context, err error) {
	var (
		scaleErr    *service.InvalidScaleError
		insErr      *service.InsufficientQuestionsError
		chapterErr  *service.ChapterNotInLessonError
		questionErr *service.QuestionNotInChapterError
	)

	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrRecordNotFound)
	case errors.Is(err, service.ErrRecordUnavailable):
		response.Fail(c, http.StatusForbidden, response.ErrRecordUnavailable)
	case errors.Is(err, service.ErrRecordExisted):
		response.Fail(c, http.StatusConflict, response.ErrRecordExisted)
	case errors.Is(err, service.ErrRecordInUse):
		response.Fail(c, http.StatusConflict, response.ErrRecordInUse)
	case errors.Is(err, service.ErrNoPermission):
		response.Fail(c, http.StatusForbidden, response.ErrNoPermission)
	case errors.Is(err, service.ErrGenerationLimit):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrGenerationLimit)
	case errors.Is(err, service.ErrConcurrentUpdate):
		response.Fail(c, http.StatusConflict, response.ErrRecordInUse)
	case errors.Is(err, service.ErrUploadFailed):
		response.Fail(c, http.StatusInternalServerError, response.ErrUploadFailed)
	case errors.Is(err, service.ErrInvalidAnswers), errors.Is(err, service.ErrInvalidInput):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, err.Error())
	case errors.Is(err, generator.ErrInvalidFillInFormat):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidFillInFormat, err.Error())
	case errors.Is(err, generator.ErrTooManyDistractors):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrTooManyDistractors, err.Error())
	case errors.Is(err, generator.ErrUnknownLabelScheme):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidLabelScheme)
	case errors.As(err, &scaleErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidScalePercent, scaleErr.Error())
	case errors.As(err, &insErr):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrInsufficientQuestions, insErr.Error())
	case errors.As(err, &chapterErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, chapterErr.Error())
	case errors.As(err, &questionErr):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload, questionErr.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

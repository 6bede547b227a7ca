package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/middleware"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/papergen/papergen-backend/internal/response"
	"github.com/papergen/papergen-backend/internal/service"
	"github.com/papergen/papergen-backend/internal/validator"
)

// QuestionHandler handles question-bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListByChapter godoc
// GET /api/v1/chapters/:id/questions
func (h *QuestionHandler) ListByChapter(c *gin.Context) {
	chapterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListByChapter(c.Request.Context(), middleware.CallerFromContext(c), chapterID)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Get godoc
// GET /api/v1/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Create godoc
// POST /api/v1/questions
// Accepts either a JSON body or a multipart form with a "payload" JSON field
// and an optional "picture" image file.
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest

	contentType := c.ContentType()
	if contentType == "multipart/form-data" {
		payload := c.PostForm("payload")
		if payload == "" {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		if fields := validator.Check(&req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	} else {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	// Picture is optional and only meaningful on multipart requests.
	picture, _ := c.FormFile("picture")

	question, err := h.questionService.Create(c.Request.Context(), middleware.CallerFromContext(c), &req, picture)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), middleware.CallerFromContext(c), id, &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}

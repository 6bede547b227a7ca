package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/papergen/papergen-backend/internal/middleware"
	"github.com/papergen/papergen-backend/internal/model"
	"github.com/papergen/papergen-backend/internal/response"
	"github.com/papergen/papergen-backend/internal/service"
	"github.com/papergen/papergen-backend/internal/validator"
)

// ExamHandler handles exam paper endpoints: generation, assembly, metadata
// and payload reads.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// List godoc
// GET /api/v1/exams
func (h *ExamHandler) List(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	exams, total, perPage, err := h.examService.List(c.Request.Context(), caller, page, perPage)
	if err != nil {
		failServiceError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// Get godoc
// GET /api/v1/exams/:id
// Serves the full paper payload, preferring the Redis copy.
func (h *ExamHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetCachedPaper(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Generate godoc
// POST /api/v1/exams/generate
// Builds papers from a weighted chapter/level scale list.
func (h *ExamHandler) Generate(c *gin.Context) {
	var req model.GenerateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exams, err := h.examService.Generate(c.Request.Context(), middleware.CallerFromContext(c), &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exams": exams})
}

// Assemble godoc
// POST /api/v1/exams/assemble
// Builds papers from hand-picked questions.
func (h *ExamHandler) Assemble(c *gin.Context) {
	var req model.AssembleExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exams, err := h.examService.Assemble(c.Request.Context(), middleware.CallerFromContext(c), &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exams": exams})
}

// Update godoc
// PUT /api/v1/exams/:id
func (h *ExamHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.UpdateMeta(c.Request.Context(), middleware.CallerFromContext(c), id, &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Delete godoc
// DELETE /api/v1/exams/:id
func (h *ExamHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.examService.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "exam deleted successfully"})
}

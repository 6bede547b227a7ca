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

// LessonHandler handles lesson management endpoints.
type LessonHandler struct {
	lessonService *service.LessonService
	examService   *service.ExamService
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(lessonService *service.LessonService, examService *service.ExamService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, examService: examService}
}

// List godoc
// GET /api/v1/lessons
func (h *LessonHandler) List(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	lessons, total, perPage, err := h.lessonService.List(c.Request.Context(), caller, page, perPage, c.Query("search"))
	if err != nil {
		failServiceError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"lessons": lessons}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// Get godoc
// GET /api/v1/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	lesson, err := h.lessonService.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// Create godoc
// POST /api/v1/lessons
func (h *LessonHandler) Create(c *gin.Context) {
	var req model.CreateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), middleware.CallerFromContext(c), &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lesson": lesson})
}

// Update godoc
// PUT /api/v1/lessons/:id
func (h *LessonHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), middleware.CallerFromContext(c), id, &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// ListExams godoc
// GET /api/v1/lessons/:id/exams
func (h *LessonHandler) ListExams(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exams, err := h.examService.ListByLesson(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Delete godoc
// DELETE /api/v1/lessons/:id
func (h *LessonHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "lesson deleted successfully"})
}

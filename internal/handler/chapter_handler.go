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

// ChapterHandler handles chapter management endpoints.
type ChapterHandler struct {
	chapterService *service.ChapterService
}

// NewChapterHandler creates a new ChapterHandler.
func NewChapterHandler(chapterService *service.ChapterService) *ChapterHandler {
	return &ChapterHandler{chapterService: chapterService}
}

// List godoc
// GET /api/v1/chapters
func (h *ChapterHandler) List(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	chapters, total, perPage, err := h.chapterService.List(c.Request.Context(), caller, page, perPage, search)
	if err != nil {
		failServiceError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"chapters": chapters}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// Get godoc
// GET /api/v1/chapters/:id
func (h *ChapterHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	chapter, err := h.chapterService.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapter": chapter})
}

// Create godoc
// POST /api/v1/chapters
func (h *ChapterHandler) Create(c *gin.Context) {
	var req model.CreateChapterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	chapter, err := h.chapterService.Create(c.Request.Context(), middleware.CallerFromContext(c), &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"chapter": chapter})
}

// Update godoc
// PUT /api/v1/chapters/:id
func (h *ChapterHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateChapterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	chapter, err := h.chapterService.Update(c.Request.Context(), middleware.CallerFromContext(c), id, &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapter": chapter})
}

// Delete godoc
// DELETE /api/v1/chapters/:id
func (h *ChapterHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.chapterService.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "chapter deleted successfully"})
}

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

// ClassHandler handles class management endpoints.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// List godoc
// GET /api/v1/classes
func (h *ClassHandler) List(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	classes, total, perPage, err := h.classService.List(c.Request.Context(), caller, page, perPage, c.Query("search"))
	if err != nil {
		failServiceError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"classes": classes}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// Get godoc
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	class, err := h.classService.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// Create godoc
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), middleware.CallerFromContext(c), &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// Update godoc
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), middleware.CallerFromContext(c), id, &req)
	if err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// Delete godoc
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.classService.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		failServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "class deleted successfully"})
}

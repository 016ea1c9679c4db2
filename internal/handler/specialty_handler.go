package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/service"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// SpecialtyHandler handles specialty catalog endpoints.
type SpecialtyHandler struct {
	service *service.SpecialtyService
}

// NewSpecialtyHandler constructs a specialty handler.
func NewSpecialtyHandler(svc *service.SpecialtyService) *SpecialtyHandler {
	return &SpecialtyHandler{service: svc}
}

// List godoc
// @Summary List specialties
// @Tags Specialties
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /specialties [get]
func (h *SpecialtyHandler) List(c *gin.Context) {
	specialties, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, specialties, nil)
}

// Get godoc
// @Summary Get specialty by id
// @Tags Specialties
// @Produce json
// @Param id path string true "Specialty ID"
// @Success 200 {object} response.Envelope
// @Router /specialties/{id} [get]
func (h *SpecialtyHandler) Get(c *gin.Context) {
	specialty, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, specialty, nil)
}

// Create godoc
// @Summary Create specialty
// @Tags Specialties
// @Accept json
// @Produce json
// @Param payload body service.SpecialtyRequest true "Specialty payload"
// @Success 201 {object} response.Envelope
// @Router /specialties [post]
func (h *SpecialtyHandler) Create(c *gin.Context) {
	var req service.SpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	specialty, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, specialty)
}

// Update godoc
// @Summary Update specialty
// @Tags Specialties
// @Accept json
// @Produce json
// @Param id path string true "Specialty ID"
// @Param payload body service.SpecialtyRequest true "Specialty payload"
// @Success 200 {object} response.Envelope
// @Router /specialties/{id} [put]
func (h *SpecialtyHandler) Update(c *gin.Context) {
	var req service.SpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	specialty, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, specialty, nil)
}

// Delete godoc
// @Summary Delete specialty
// @Tags Specialties
// @Produce json
// @Param id path string true "Specialty ID"
// @Success 204
// @Router /specialties/{id} [delete]
func (h *SpecialtyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/service"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// CycleHandler handles cycle catalog endpoints.
type CycleHandler struct {
	service *service.CycleService
}

// NewCycleHandler constructs a cycle handler.
func NewCycleHandler(svc *service.CycleService) *CycleHandler {
	return &CycleHandler{service: svc}
}

// List godoc
// @Summary List cycles
// @Tags Cycles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cycles [get]
func (h *CycleHandler) List(c *gin.Context) {
	cycles, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, nil)
}

// Get godoc
// @Summary Get cycle by id
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [get]
func (h *CycleHandler) Get(c *gin.Context) {
	cycle, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Create godoc
// @Summary Create cycle
// @Tags Cycles
// @Accept json
// @Produce json
// @Param payload body service.CycleRequest true "Cycle payload"
// @Success 201 {object} response.Envelope
// @Router /cycles [post]
func (h *CycleHandler) Create(c *gin.Context) {
	var req service.CycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cycle, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// Update godoc
// @Summary Update cycle
// @Tags Cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param payload body service.CycleRequest true "Cycle payload"
// @Success 200 {object} response.Envelope
// @Router /cycles/{id} [put]
func (h *CycleHandler) Update(c *gin.Context) {
	var req service.CycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cycle, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Delete godoc
// @Summary Delete cycle
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 204
// @Router /cycles/{id} [delete]
func (h *CycleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/service"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// CareerHandler handles career catalog endpoints.
type CareerHandler struct {
	service *service.CareerService
}

// NewCareerHandler constructs a career handler.
func NewCareerHandler(svc *service.CareerService) *CareerHandler {
	return &CareerHandler{service: svc}
}

// List godoc
// @Summary List careers
// @Tags Careers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /careers [get]
func (h *CareerHandler) List(c *gin.Context) {
	careers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, careers, nil)
}

// Get godoc
// @Summary Get career by id
// @Tags Careers
// @Produce json
// @Param id path string true "Career ID"
// @Success 200 {object} response.Envelope
// @Router /careers/{id} [get]
func (h *CareerHandler) Get(c *gin.Context) {
	career, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, career, nil)
}

// Create godoc
// @Summary Create career
// @Tags Careers
// @Accept json
// @Produce json
// @Param payload body service.CareerRequest true "Career payload"
// @Success 201 {object} response.Envelope
// @Router /careers [post]
func (h *CareerHandler) Create(c *gin.Context) {
	var req service.CareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	career, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, career)
}

// Update godoc
// @Summary Update career
// @Tags Careers
// @Accept json
// @Produce json
// @Param id path string true "Career ID"
// @Param payload body service.CareerRequest true "Career payload"
// @Success 200 {object} response.Envelope
// @Router /careers/{id} [put]
func (h *CareerHandler) Update(c *gin.Context) {
	var req service.CareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	career, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, career, nil)
}

// Delete godoc
// @Summary Delete career
// @Tags Careers
// @Produce json
// @Param id path string true "Career ID"
// @Success 204
// @Router /careers/{id} [delete]
func (h *CareerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/models"
	"github.com/uniadmin/uniadmin-api/internal/repository"
	"github.com/uniadmin/uniadmin-api/internal/service"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// AuditHandler handles help-desk trail endpoints.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs an audit handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param user_id query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Param resource query string false "Filter by resource"
// @Param from query string false "From date (RFC3339)"
// @Param to query string false "To date (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter repository.AuditLogFilter
	filter.UserID = c.Query("user_id")
	filter.Action = c.Query("action")
	filter.Resource = c.Query("resource")
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateFrom = &ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DateTo = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// History godoc
// @Summary Get the change history of one record
// @Tags Audit
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /audit-logs/{resource}/{id} [get]
func (h *AuditHandler) History(c *gin.Context) {
	logs, err := h.service.History(c.Request.Context(), c.Param("resource"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// ListEvents godoc
// @Summary List operational system events
// @Tags Audit
// @Produce json
// @Param level query string false "Filter by level"
// @Param source query string false "Filter by source"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /system-logs [get]
func (h *AuditHandler) ListEvents(c *gin.Context) {
	var filter repository.SystemLogFilter
	filter.Level = models.LogLevel(c.Query("level"))
	filter.Source = c.Query("source")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	logs, pagination, err := h.service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

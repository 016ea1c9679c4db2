package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/models"
	"github.com/uniadmin/uniadmin-api/internal/service"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// EnrollmentHandler handles enrollment coordinator endpoints.
type EnrollmentHandler struct {
	service *service.EnrollmentService
	audit   *service.AuditService
	reports *service.ReportService
	metrics *service.MetricsService
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, audit *service.AuditService, reports *service.ReportService, metrics *service.MetricsService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, audit: audit, reports: reports, metrics: metrics}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param subject_id query string false "Filter by subject"
// @Param period_id query string false "Filter by academic period"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.StudentID = c.Query("student_id")
	filter.SubjectID = c.Query("subject_id")
	filter.AcademicPeriodID = c.Query("period_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	enrollments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get enrollment by id
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Enroll godoc
// @Summary Enroll a student into a subject
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		h.observe("enroll", err)
		response.Error(c, err)
		return
	}
	h.observe("enroll", nil)

	if h.audit != nil {
		h.audit.Record(c.Request.Context(), actorID(c), models.AuditActionEnroll, "enrollments", &enrollment.ID, nil, enrollment, c.ClientIP(), c.Request.UserAgent())
	}
	if h.reports != nil {
		h.reports.Invalidate(c.Request.Context())
	}
	response.Created(c, enrollment)
}

// Reassign godoc
// @Summary Move an enrollment to another subject
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.ReassignRequest true "Reassignment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reassign [put]
func (h *EnrollmentHandler) Reassign(c *gin.Context) {
	var req service.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	enrollment, err := h.service.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.observe("reassign", err)
		response.Error(c, err)
		return
	}
	h.observe("reassign", nil)

	if h.audit != nil {
		h.audit.Record(c.Request.Context(), actorID(c), models.AuditActionReassign, "enrollments", &enrollment.ID, nil, enrollment, c.ClientIP(), c.Request.UserAgent())
	}
	if h.reports != nil {
		h.reports.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Withdraw godoc
// @Summary Withdraw an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Withdraw(c.Request.Context(), id); err != nil {
		h.observe("withdraw", err)
		response.Error(c, err)
		return
	}
	h.observe("withdraw", nil)

	if h.audit != nil {
		h.audit.Record(c.Request.Context(), actorID(c), models.AuditActionWithdraw, "enrollments", &id, nil, nil, c.ClientIP(), c.Request.UserAgent())
	}
	if h.reports != nil {
		h.reports.Invalidate(c.Request.Context())
	}
	response.NoContent(c)
}

func (h *EnrollmentHandler) observe(operation string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = appErrors.FromError(err).Code
		if appErrors.Is(err, appErrors.ErrQuotaExhausted) {
			h.metrics.RecordQuotaExhausted()
		}
	}
	h.metrics.RecordEnrollmentOperation(operation, outcome)
}

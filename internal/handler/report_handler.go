package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/service"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// ReportHandler handles aggregate report endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// SubjectOccupancy godoc
// @Summary Subject seat occupancy report
// @Tags Reports
// @Produce json
// @Param career_id query string false "Scope to one career"
// @Success 200 {object} response.Envelope
// @Router /reports/occupancy [get]
func (h *ReportHandler) SubjectOccupancy(c *gin.Context) {
	rows, err := h.service.SubjectOccupancy(c.Request.Context(), c.Query("career_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// PeriodSummary godoc
// @Summary Enrollments per academic period
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/periods [get]
func (h *ReportHandler) PeriodSummary(c *gin.Context) {
	rows, err := h.service.PeriodSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// CareerSummary godoc
// @Summary Students and enrollments per career
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/careers [get]
func (h *ReportHandler) CareerSummary(c *gin.Context) {
	rows, err := h.service.CareerSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportOccupancy godoc
// @Summary Download the occupancy report
// @Tags Reports
// @Produce application/octet-stream
// @Param career_id query string false "Scope to one career"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/occupancy/export [get]
func (h *ReportHandler) ExportOccupancy(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	payload, filename, err := h.service.ExportOccupancy(c.Request.Context(), c.Query("career_id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentTypeFor(format), payload)
}

// ExportPeriodSummary godoc
// @Summary Download the period report
// @Tags Reports
// @Produce application/octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/periods/export [get]
func (h *ReportHandler) ExportPeriodSummary(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	payload, filename, err := h.service.ExportPeriodSummary(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentTypeFor(format), payload)
}

func contentTypeFor(format service.ExportFormat) string {
	if format == service.ExportPDF {
		return "application/pdf"
	}
	return "text/csv"
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniadmin/uniadmin-api/internal/service"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/response"
)

// LinkageHandler handles teacher-subject and student-subject endpoints.
type LinkageHandler struct {
	service *service.LinkageService
}

// NewLinkageHandler constructs a linkage handler.
func NewLinkageHandler(svc *service.LinkageService) *LinkageHandler {
	return &LinkageHandler{service: svc}
}

// ListTeacherSubjects godoc
// @Summary List teacher-subject links
// @Tags Linkages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teacher-subjects [get]
func (h *LinkageHandler) ListTeacherSubjects(c *gin.Context) {
	links, err := h.service.ListTeacherSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// CreateTeacherSubject godoc
// @Summary Link a teacher to a subject
// @Tags Linkages
// @Accept json
// @Produce json
// @Param payload body service.TeacherSubjectRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Router /teacher-subjects [post]
func (h *LinkageHandler) CreateTeacherSubject(c *gin.Context) {
	var req service.TeacherSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.service.CreateTeacherSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// DeleteTeacherSubject godoc
// @Summary Remove a teacher-subject link
// @Tags Linkages
// @Produce json
// @Param id path string true "Link ID"
// @Success 204
// @Router /teacher-subjects/{id} [delete]
func (h *LinkageHandler) DeleteTeacherSubject(c *gin.Context) {
	if err := h.service.DeleteTeacherSubject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListStudentSubjects godoc
// @Summary List student-subject links
// @Tags Linkages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student-subjects [get]
func (h *LinkageHandler) ListStudentSubjects(c *gin.Context) {
	links, err := h.service.ListStudentSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// CreateStudentSubject godoc
// @Summary Link a student to a subject
// @Tags Linkages
// @Accept json
// @Produce json
// @Param payload body service.StudentSubjectRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Router /student-subjects [post]
func (h *LinkageHandler) CreateStudentSubject(c *gin.Context) {
	var req service.StudentSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.service.CreateStudentSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// DeleteStudentSubject godoc
// @Summary Remove a student-subject link
// @Tags Linkages
// @Produce json
// @Param id path string true "Link ID"
// @Success 204
// @Router /student-subjects/{id} [delete]
func (h *LinkageHandler) DeleteStudentSubject(c *gin.Context) {
	if err := h.service.DeleteStudentSubject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

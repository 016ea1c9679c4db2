package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type teacherSubjectRepository interface {
	List(ctx context.Context) ([]models.TeacherSubjectDetail, error)
	FindByID(ctx context.Context, id string) (*models.TeacherSubject, error)
	Exists(ctx context.Context, teacherID, subjectID string) (bool, error)
	Create(ctx context.Context, linkage *models.TeacherSubject) error
	Delete(ctx context.Context, id string) error
}

type studentSubjectRepository interface {
	List(ctx context.Context) ([]models.StudentSubjectDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentSubject, error)
	Exists(ctx context.Context, studentID, subjectID string) (bool, error)
	Create(ctx context.Context, linkage *models.StudentSubject) error
	Delete(ctx context.Context, id string) error
}

type linkageTeacherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type linkageStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type linkageSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// TeacherSubjectRequest links a teacher to a subject.
type TeacherSubjectRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// StudentSubjectRequest links a student to a subject.
type StudentSubjectRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// LinkageService manages teacher-subject and student-subject associations.
// These links carry no quota: seat accounting belongs to the enrollment
// coordinator alone.
type LinkageService struct {
	teacherSubjects teacherSubjectRepository
	studentSubjects studentSubjectRepository
	teachers        linkageTeacherRepository
	students        linkageStudentRepository
	subjects        linkageSubjectRepository
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewLinkageService creates a new linkage service instance.
func NewLinkageService(
	teacherSubjects teacherSubjectRepository,
	studentSubjects studentSubjectRepository,
	teachers linkageTeacherRepository,
	students linkageStudentRepository,
	subjects linkageSubjectRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *LinkageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkageService{
		teacherSubjects: teacherSubjects,
		studentSubjects: studentSubjects,
		teachers:        teachers,
		students:        students,
		subjects:        subjects,
		validator:       validate,
		logger:          logger,
	}
}

// ListTeacherSubjects returns all teacher-subject links with display names.
func (s *LinkageService) ListTeacherSubjects(ctx context.Context) ([]models.TeacherSubjectDetail, error) {
	links, err := s.teacherSubjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher subjects")
	}
	return links, nil
}

// CreateTeacherSubject links a teacher to a subject once.
func (s *LinkageService) CreateTeacherSubject(ctx context.Context, req TeacherSubjectRequest) (*models.TeacherSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher subject payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.teacherSubjects.Exists(ctx, req.TeacherID, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher subject uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already linked to subject")
	}

	link := &models.TeacherSubject{TeacherID: req.TeacherID, SubjectID: req.SubjectID}
	if err := s.teacherSubjects.Create(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher subject")
	}
	return link, nil
}

// DeleteTeacherSubject removes a teacher-subject link.
func (s *LinkageService) DeleteTeacherSubject(ctx context.Context, id string) error {
	if _, err := s.teacherSubjects.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher subject")
	}
	if err := s.teacherSubjects.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher subject")
	}
	return nil
}

// ListStudentSubjects returns all student-subject links with display names.
func (s *LinkageService) ListStudentSubjects(ctx context.Context) ([]models.StudentSubjectDetail, error) {
	links, err := s.studentSubjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student subjects")
	}
	return links, nil
}

// CreateStudentSubject links a student to a subject once.
func (s *LinkageService) CreateStudentSubject(ctx context.Context, req StudentSubjectRequest) (*models.StudentSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student subject payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.studentSubjects.Exists(ctx, req.StudentID, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student subject uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already linked to subject")
	}

	link := &models.StudentSubject{StudentID: req.StudentID, SubjectID: req.SubjectID}
	if err := s.studentSubjects.Create(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student subject")
	}
	return link, nil
}

// DeleteStudentSubject removes a student-subject link.
func (s *LinkageService) DeleteStudentSubject(ctx context.Context, id string) error {
	if _, err := s.studentSubjects.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student subject")
	}
	if err := s.studentSubjects.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student subject")
	}
	return nil
}

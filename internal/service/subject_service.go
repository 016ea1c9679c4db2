package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByName(ctx context.Context, careerID, cycleID, name, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, id string) (int, error)
}

type subjectCareerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Career, error)
}

type subjectCycleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
}

// CreateSubjectRequest describes payload for creating subjects.
type CreateSubjectRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Credits  int    `json:"credits" validate:"required,min=1,max=30"`
	MaxQuota int    `json:"max_quota" validate:"required,min=1"`
	CareerID string `json:"career_id" validate:"required"`
	CycleID  string `json:"cycle_id" validate:"required"`
}

// UpdateSubjectRequest updates mutable fields on a subject.
type UpdateSubjectRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Credits  int    `json:"credits" validate:"required,min=1,max=30"`
	MaxQuota int    `json:"max_quota" validate:"required,min=1"`
	CareerID string `json:"career_id" validate:"required"`
	CycleID  string `json:"cycle_id" validate:"required"`
}

// SubjectService orchestrates subject catalog workflows.
type SubjectService struct {
	repo      subjectRepository
	careers   subjectCareerRepository
	cycles    subjectCycleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service instance.
func NewSubjectService(
	repo subjectRepository,
	careers subjectCareerRepository,
	cycles subjectCycleRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, careers: careers, cycles: cycles, validator: validate, logger: logger}
}

// List returns paginated subjects with career and cycle names.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
	}
	return subjects, pagination, nil
}

// Get returns a subject by ID.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject. AvailableQuota starts equal to MaxQuota.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	if _, err := s.careers.FindByID(ctx, req.CareerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}
	if _, err := s.cycles.FindByID(ctx, req.CycleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}

	exists, err := s.repo.ExistsByName(ctx, req.CareerID, req.CycleID, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists for career and cycle")
	}

	subject := &models.Subject{
		Name:           req.Name,
		Credits:        req.Credits,
		MaxQuota:       req.MaxQuota,
		AvailableQuota: req.MaxQuota,
		CareerID:       req.CareerID,
		CycleID:        req.CycleID,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies a subject. When MaxQuota changes the available counter is
// recomputed so already occupied seats stay occupied, clamped at zero.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if req.CareerID != subject.CareerID {
		if _, err := s.careers.FindByID(ctx, req.CareerID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
		}
	}
	if req.CycleID != subject.CycleID {
		if _, err := s.cycles.FindByID(ctx, req.CycleID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
		}
	}

	exists, err := s.repo.ExistsByName(ctx, req.CareerID, req.CycleID, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject already exists for career and cycle")
	}

	if req.MaxQuota != subject.MaxQuota {
		subject.AvailableQuota = adjustedQuota(subject.MaxQuota, subject.AvailableQuota, req.MaxQuota)
	}
	subject.Name = req.Name
	subject.Credits = req.Credits
	subject.MaxQuota = req.MaxQuota
	subject.CareerID = req.CareerID
	subject.CycleID = req.CycleID

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject unless it still has live enrollments.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	count, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "subject has active enrollments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

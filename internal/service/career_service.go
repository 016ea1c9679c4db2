package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type careerRepository interface {
	List(ctx context.Context) ([]models.CareerDetail, error)
	FindByID(ctx context.Context, id string) (*models.Career, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, career *models.Career) error
	Update(ctx context.Context, career *models.Career) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

type careerSpecialtyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Specialty, error)
}

// CareerRequest describes payload for creating or updating careers.
type CareerRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	TotalCycles   int    `json:"total_cycles" validate:"required,min=1,max=20"`
	DurationYears int    `json:"duration_years" validate:"required,min=1,max=10"`
	SpecialtyID   string `json:"specialty_id" validate:"required"`
}

// CareerService orchestrates career catalog workflows.
type CareerService struct {
	repo        careerRepository
	specialties careerSpecialtyRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCareerService creates a new career service instance.
func NewCareerService(repo careerRepository, specialties careerSpecialtyRepository, validate *validator.Validate, logger *zap.Logger) *CareerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{repo: repo, specialties: specialties, validator: validate, logger: logger}
}

// List returns all careers with specialty names.
func (s *CareerService) List(ctx context.Context) ([]models.CareerDetail, error) {
	careers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	return careers, nil
}

// Get returns a career by ID.
func (s *CareerService) Get(ctx context.Context, id string) (*models.Career, error) {
	career, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}
	return career, nil
}

// Create adds a new career under an existing specialty.
func (s *CareerService) Create(ctx context.Context, req CareerRequest) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}

	if _, err := s.specialties.FindByID(ctx, req.SpecialtyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "specialty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialty")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check career uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "career name already exists")
	}

	career := &models.Career{
		Name:          req.Name,
		TotalCycles:   req.TotalCycles,
		DurationYears: req.DurationYears,
		SpecialtyID:   req.SpecialtyID,
	}
	if err := s.repo.Create(ctx, career); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create career")
	}
	return career, nil
}

// Update modifies a career record.
func (s *CareerService) Update(ctx context.Context, id string, req CareerRequest) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}

	career, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}

	if req.SpecialtyID != career.SpecialtyID {
		if _, err := s.specialties.FindByID(ctx, req.SpecialtyID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "specialty not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialty")
		}
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check career uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "career name already exists")
	}

	career.Name = req.Name
	career.TotalCycles = req.TotalCycles
	career.DurationYears = req.DurationYears
	career.SpecialtyID = req.SpecialtyID
	if err := s.repo.Update(ctx, career); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update career")
	}
	return career, nil
}

// Delete removes a career unless students still reference it.
func (s *CareerService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}

	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "career has students attached")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete career")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type specialtyRepository interface {
	List(ctx context.Context) ([]models.Specialty, error)
	FindByID(ctx context.Context, id string) (*models.Specialty, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, specialty *models.Specialty) error
	Update(ctx context.Context, specialty *models.Specialty) error
	Delete(ctx context.Context, id string) error
	CountCareers(ctx context.Context, id string) (int, error)
}

// SpecialtyRequest describes payload for creating or updating specialties.
type SpecialtyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// SpecialtyService orchestrates specialty catalog workflows.
type SpecialtyService struct {
	repo      specialtyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSpecialtyService creates a new specialty service instance.
func NewSpecialtyService(repo specialtyRepository, validate *validator.Validate, logger *zap.Logger) *SpecialtyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpecialtyService{repo: repo, validator: validate, logger: logger}
}

// List returns all specialties.
func (s *SpecialtyService) List(ctx context.Context) ([]models.Specialty, error) {
	specialties, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list specialties")
	}
	return specialties, nil
}

// Get returns a specialty by ID.
func (s *SpecialtyService) Get(ctx context.Context, id string) (*models.Specialty, error) {
	specialty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "specialty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialty")
	}
	return specialty, nil
}

// Create adds a new specialty ensuring name uniqueness.
func (s *SpecialtyService) Create(ctx context.Context, req SpecialtyRequest) (*models.Specialty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid specialty payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check specialty uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "specialty name already exists")
	}

	specialty := &models.Specialty{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, specialty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create specialty")
	}
	return specialty, nil
}

// Update modifies a specialty record.
func (s *SpecialtyService) Update(ctx context.Context, id string, req SpecialtyRequest) (*models.Specialty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid specialty payload")
	}

	specialty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "specialty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialty")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check specialty uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "specialty name already exists")
	}

	specialty.Name = req.Name
	specialty.Description = req.Description
	if err := s.repo.Update(ctx, specialty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update specialty")
	}
	return specialty, nil
}

// Delete removes a specialty unless careers still reference it.
func (s *SpecialtyService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "specialty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialty")
	}

	count, err := s.repo.CountCareers(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count careers")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "specialty has careers attached")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete specialty")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type cycleRepository interface {
	List(ctx context.Context) ([]models.Cycle, error)
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
	ExistsByNumber(ctx context.Context, number int, excludeID string) (bool, error)
	Create(ctx context.Context, cycle *models.Cycle) error
	Update(ctx context.Context, cycle *models.Cycle) error
	Delete(ctx context.Context, id string) error
	CountSubjects(ctx context.Context, id string) (int, error)
}

// CycleRequest describes payload for creating or updating cycles.
type CycleRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=60"`
	Number int    `json:"number" validate:"required,min=1,max=20"`
}

// CycleService orchestrates cycle catalog workflows.
type CycleService struct {
	repo      cycleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCycleService creates a new cycle service instance.
func NewCycleService(repo cycleRepository, validate *validator.Validate, logger *zap.Logger) *CycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleService{repo: repo, validator: validate, logger: logger}
}

// List returns all cycles ordered by number.
func (s *CycleService) List(ctx context.Context) ([]models.Cycle, error) {
	cycles, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}
	return cycles, nil
}

// Get returns a cycle by ID.
func (s *CycleService) Get(ctx context.Context, id string) (*models.Cycle, error) {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}
	return cycle, nil
}

// Create adds a new cycle ensuring ordinal uniqueness.
func (s *CycleService) Create(ctx context.Context, req CycleRequest) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle payload")
	}

	exists, err := s.repo.ExistsByNumber(ctx, req.Number, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cycle uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cycle number already exists")
	}

	cycle := &models.Cycle{Name: req.Name, Number: req.Number}
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cycle")
	}
	return cycle, nil
}

// Update modifies a cycle record.
func (s *CycleService) Update(ctx context.Context, id string, req CycleRequest) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle payload")
	}

	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}

	exists, err := s.repo.ExistsByNumber(ctx, req.Number, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cycle uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cycle number already exists")
	}

	cycle.Name = req.Name
	cycle.Number = req.Number
	if err := s.repo.Update(ctx, cycle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update cycle")
	}
	return cycle, nil
}

// Delete removes a cycle unless subjects still reference it.
func (s *CycleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}

	count, err := s.repo.CountSubjects(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subjects")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "cycle has subjects attached")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cycle")
	}
	return nil
}

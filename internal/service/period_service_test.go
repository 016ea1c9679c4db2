package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type mockPeriodRepo struct {
	periods     map[string]models.AcademicPeriod
	nameTaken   bool
	enrollments int
	activated   []string
	deleted     []string
}

func (m *mockPeriodRepo) List(ctx context.Context, filter models.AcademicPeriodFilter) ([]models.AcademicPeriod, int, error) {
	return nil, 0, nil
}

func (m *mockPeriodRepo) FindByID(ctx context.Context, id string) (*models.AcademicPeriod, error) {
	if p, ok := m.periods[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPeriodRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockPeriodRepo) Create(ctx context.Context, period *models.AcademicPeriod) error {
	if period.ID == "" {
		period.ID = "new-period"
	}
	if m.periods == nil {
		m.periods = make(map[string]models.AcademicPeriod)
	}
	m.periods[period.ID] = *period
	return nil
}

func (m *mockPeriodRepo) Update(ctx context.Context, period *models.AcademicPeriod) error {
	m.periods[period.ID] = *period
	return nil
}

func (m *mockPeriodRepo) SetActive(ctx context.Context, id string) error {
	// Mirrors the transactional repository: exactly one period stays active.
	for key, p := range m.periods {
		p.IsActive = key == id
		m.periods[key] = p
	}
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockPeriodRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.periods, id)
	return nil
}

func (m *mockPeriodRepo) CountEnrollments(ctx context.Context, id string) (int, error) {
	return m.enrollments, nil
}

func periodDates() (time.Time, time.Time) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 4, 0)
}

func TestPeriodServiceCreate(t *testing.T) {
	repo := &mockPeriodRepo{}
	svc := NewPeriodService(repo, validator.New(), zap.NewNop())

	start, end := periodDates()
	period, err := svc.Create(context.Background(), CreatePeriodRequest{Name: "2026-I", StartDate: start, EndDate: end})
	require.NoError(t, err)
	assert.False(t, period.IsActive)
	assert.Empty(t, repo.activated)
}

func TestPeriodServiceCreateActive(t *testing.T) {
	repo := &mockPeriodRepo{periods: map[string]models.AcademicPeriod{
		"per-old": {ID: "per-old", Name: "2025-II", IsActive: true},
	}}
	svc := NewPeriodService(repo, validator.New(), zap.NewNop())

	start, end := periodDates()
	period, err := svc.Create(context.Background(), CreatePeriodRequest{Name: "2026-I", StartDate: start, EndDate: end, IsActive: true})
	require.NoError(t, err)
	assert.True(t, period.IsActive)
	// Activation is exclusive: the previous window is closed.
	assert.False(t, repo.periods["per-old"].IsActive)
}

func TestPeriodServiceCreateInvertedDates(t *testing.T) {
	svc := NewPeriodService(&mockPeriodRepo{}, validator.New(), zap.NewNop())

	start, end := periodDates()
	_, err := svc.Create(context.Background(), CreatePeriodRequest{Name: "2026-I", StartDate: end, EndDate: start})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestPeriodServiceCreateDuplicateName(t *testing.T) {
	svc := NewPeriodService(&mockPeriodRepo{nameTaken: true}, validator.New(), zap.NewNop())

	start, end := periodDates()
	_, err := svc.Create(context.Background(), CreatePeriodRequest{Name: "2026-I", StartDate: start, EndDate: end})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestPeriodServiceSetActive(t *testing.T) {
	repo := &mockPeriodRepo{periods: map[string]models.AcademicPeriod{
		"per-1": {ID: "per-1", Name: "2026-I"},
		"per-2": {ID: "per-2", Name: "2025-II", IsActive: true},
	}}
	svc := NewPeriodService(repo, validator.New(), zap.NewNop())

	period, err := svc.SetActive(context.Background(), "per-1")
	require.NoError(t, err)
	assert.True(t, period.IsActive)
	assert.False(t, repo.periods["per-2"].IsActive)
}

func TestPeriodServiceSetActiveNotFound(t *testing.T) {
	svc := NewPeriodService(&mockPeriodRepo{}, validator.New(), zap.NewNop())

	_, err := svc.SetActive(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestPeriodServiceDeleteWithEnrollments(t *testing.T) {
	repo := &mockPeriodRepo{
		periods:     map[string]models.AcademicPeriod{"per-1": {ID: "per-1"}},
		enrollments: 2,
	}
	svc := NewPeriodService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "per-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.deleted)
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type mockReportRepo struct {
	occupancy []models.SubjectOccupancy
	periods   []models.PeriodSummary
	careers   []models.CareerSummary
	calls     int
}

func (m *mockReportRepo) SubjectOccupancy(ctx context.Context, careerID string) ([]models.SubjectOccupancy, error) {
	m.calls++
	return m.occupancy, nil
}

func (m *mockReportRepo) PeriodSummary(ctx context.Context) ([]models.PeriodSummary, error) {
	m.calls++
	return m.periods, nil
}

func (m *mockReportRepo) CareerSummary(ctx context.Context) ([]models.CareerSummary, error) {
	m.calls++
	return m.careers, nil
}

type mockReportCache struct {
	store   map[string][]byte
	deleted []string
}

func (m *mockReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *mockReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = payload
	return nil
}

func (m *mockReportCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	m.store = nil
	return nil
}

func TestReportServiceOccupancyCachesResult(t *testing.T) {
	repo := &mockReportRepo{occupancy: []models.SubjectOccupancy{
		{SubjectID: "sub-1", SubjectName: "Algebra", CareerName: "CS", MaxQuota: 10, AvailableQuota: 4, EnrolledCount: 6},
	}}
	cache := &mockReportCache{}
	svc := NewReportService(repo, cache, zap.NewNop(), time.Minute)

	first, err := svc.SubjectOccupancy(context.Background(), "car-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.calls)

	// Second read is served from cache without touching the repository.
	second, err := svc.SubjectOccupancy(context.Background(), "car-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestReportServiceWorksWithoutCache(t *testing.T) {
	repo := &mockReportRepo{periods: []models.PeriodSummary{
		{PeriodID: "per-1", PeriodName: "2026-I", IsActive: true, EnrollmentCount: 42},
	}}
	svc := NewReportService(repo, nil, zap.NewNop(), time.Minute)

	rows, err := svc.PeriodSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 42, rows[0].EnrollmentCount)
}

func TestReportServiceInvalidate(t *testing.T) {
	repo := &mockReportRepo{careers: []models.CareerSummary{{CareerID: "car-1", CareerName: "CS"}}}
	cache := &mockReportCache{}
	svc := NewReportService(repo, cache, zap.NewNop(), time.Minute)

	_, err := svc.CareerSummary(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cache.store)

	svc.Invalidate(context.Background())
	assert.Contains(t, cache.deleted, "reports:*")
	assert.Empty(t, cache.store)

	// After invalidation the next read recomputes.
	_, err = svc.CareerSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceExportOccupancyCSV(t *testing.T) {
	repo := &mockReportRepo{occupancy: []models.SubjectOccupancy{
		{SubjectID: "sub-1", SubjectName: "Algebra", CareerName: "CS", MaxQuota: 10, AvailableQuota: 4, EnrolledCount: 6},
	}}
	svc := NewReportService(repo, nil, zap.NewNop(), time.Minute)

	payload, filename, err := svc.ExportOccupancy(context.Background(), "", ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "occupancy.csv", filename)
	assert.Contains(t, string(payload), "Algebra")
}

func TestReportServiceExportPeriodSummaryPDF(t *testing.T) {
	repo := &mockReportRepo{periods: []models.PeriodSummary{
		{PeriodID: "per-1", PeriodName: "2026-I", IsActive: true, EnrollmentCount: 12},
	}}
	svc := NewReportService(repo, nil, zap.NewNop(), time.Minute)

	payload, filename, err := svc.ExportPeriodSummary(context.Background(), ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "periods.pdf", filename)
	assert.NotEmpty(t, payload)
}

func TestReportServiceExportUnknownFormat(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, nil, zap.NewNop(), time.Minute)

	_, _, err := svc.ExportOccupancy(context.Background(), "", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

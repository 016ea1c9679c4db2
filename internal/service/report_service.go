package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
	"github.com/uniadmin/uniadmin-api/pkg/export"
)

type reportRepository interface {
	SubjectOccupancy(ctx context.Context, careerID string) ([]models.SubjectOccupancy, error)
	PeriodSummary(ctx context.Context) ([]models.PeriodSummary, error)
	CareerSummary(ctx context.Context) ([]models.CareerSummary, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ExportFormat selects a report download encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

const reportCachePrefix = "reports:"

// ReportService serves aggregate read models. Results are cached in Redis
// for a short TTL; callers that mutate enrollment data are expected to call
// Invalidate so the next read recomputes.
type ReportService struct {
	repo   reportRepository
	cache  reportCache
	logger *zap.Logger
	ttl    time.Duration
}

// NewReportService creates a new report service instance.
func NewReportService(repo reportRepository, cache reportCache, logger *zap.Logger, ttl time.Duration) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// SubjectOccupancy returns per-subject seat usage, cache-first.
func (s *ReportService) SubjectOccupancy(ctx context.Context, careerID string) ([]models.SubjectOccupancy, error) {
	key := reportCachePrefix + "occupancy:" + careerID

	var cached []models.SubjectOccupancy
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("occupancy cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.SubjectOccupancy(ctx, careerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build occupancy report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
			s.logger.Warn("occupancy cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// PeriodSummary returns enrollment volume per period, cache-first.
func (s *ReportService) PeriodSummary(ctx context.Context) ([]models.PeriodSummary, error) {
	key := reportCachePrefix + "periods"

	var cached []models.PeriodSummary
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("period summary cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.PeriodSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build period report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
			s.logger.Warn("period summary cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// CareerSummary returns student and enrollment volume per career, cache-first.
func (s *ReportService) CareerSummary(ctx context.Context) ([]models.CareerSummary, error) {
	key := reportCachePrefix + "careers"

	var cached []models.CareerSummary
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("career summary cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.CareerSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build career report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
			s.logger.Warn("career summary cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// ExportOccupancy renders the occupancy report as CSV or PDF.
func (s *ReportService) ExportOccupancy(ctx context.Context, careerID string, format ExportFormat) ([]byte, string, error) {
	rows, err := s.SubjectOccupancy(ctx, careerID)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Subject Occupancy",
		Columns: []string{"Subject", "Career", "Max Quota", "Available", "Enrolled"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.SubjectName,
			row.CareerName,
			strconv.Itoa(row.MaxQuota),
			strconv.Itoa(row.AvailableQuota),
			strconv.Itoa(row.EnrolledCount),
		})
	}
	return s.render(table, format, "occupancy")
}

// ExportPeriodSummary renders the period report as CSV or PDF.
func (s *ReportService) ExportPeriodSummary(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	rows, err := s.PeriodSummary(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   "Enrollments per Period",
		Columns: []string{"Period", "Active", "Enrollments"},
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.PeriodName,
			strconv.FormatBool(row.IsActive),
			strconv.Itoa(row.EnrollmentCount),
		})
	}
	return s.render(table, format, "periods")
}

// Invalidate drops every cached report snapshot.
func (s *ReportService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCachePrefix+"*"); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

func (s *ReportService) render(table export.Table, format ExportFormat, name string) ([]byte, string, error) {
	switch format {
	case ExportCSV:
		payload, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, fmt.Sprintf("%s.csv", name), nil
	case ExportPDF:
		payload, err := export.PDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, fmt.Sprintf("%s.pdf", name), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

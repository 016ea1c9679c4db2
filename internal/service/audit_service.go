package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	"github.com/uniadmin/uniadmin-api/internal/repository"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type auditRepository interface {
	InsertAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, int, error)
	ListAuditLogsByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
	InsertSystemLog(ctx context.Context, entry *models.SystemLog) error
	ListSystemLogs(ctx context.Context, filter repository.SystemLogFilter) ([]models.SystemLog, int, error)
}

// AuditService records and queries the help-desk trail. Recording is
// best-effort: failures are logged and swallowed so an audit outage never
// blocks the operation being audited.
type AuditService struct {
	repo         auditRepository
	logger       *zap.Logger
	historyLimit int
}

// NewAuditService creates a new audit service instance.
func NewAuditService(repo auditRepository, logger *zap.Logger, historyLimit int) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &AuditService{repo: repo, logger: logger, historyLimit: historyLimit}
}

// Record appends an audit entry. Old and new values are JSON-encoded; a
// marshal failure drops the payload but still records the action.
func (s *AuditService) Record(ctx context.Context, userID *string, action, resource string, resourceID *string, oldValue, newValue interface{}, ip, userAgent string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			entry.OldValues = raw
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			entry.NewValues = raw
		}
	}

	if err := s.repo.InsertAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.Error(err),
			zap.String("action", action),
			zap.String("resource", resource),
		)
	}
}

// List returns paginated audit entries.
func (s *AuditService) List(ctx context.Context, filter repository.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	logs, total, err := s.repo.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return logs, pagination, nil
}

// History returns the recent change trail of one record.
func (s *AuditService) History(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error) {
	logs, err := s.repo.ListAuditLogsByResource(ctx, resource, resourceID, s.historyLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit history")
	}
	return logs, nil
}

// LogEvent appends an operational event.
func (s *AuditService) LogEvent(ctx context.Context, level models.LogLevel, source, message string) {
	entry := &models.SystemLog{
		Level:     level,
		Source:    source,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertSystemLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record system log", zap.Error(err), zap.String("source", source))
	}
}

// ListEvents returns paginated operational events.
func (s *AuditService) ListEvents(ctx context.Context, filter repository.SystemLogFilter) ([]models.SystemLog, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	logs, total, err := s.repo.ListSystemLogs(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list system logs")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return logs, pagination, nil
}

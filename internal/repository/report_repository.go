package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/uniadmin/uniadmin-api/internal/models"
)

// ReportRepository exposes read-optimised aggregate queries for reporting.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository instantiates the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SubjectOccupancy returns seat usage per subject, optionally scoped to a
// career. EnrolledCount is computed from the ledger rather than the quota
// columns so drift between the two is visible in the report.
func (r *ReportRepository) SubjectOccupancy(ctx context.Context, careerID string) ([]models.SubjectOccupancy, error) {
	query := `
		SELECT s.id AS subject_id,
		       s.name AS subject_name,
		       c.name AS career_name,
		       s.max_quota,
		       s.available_quota,
		       COUNT(e.id) AS enrolled_count
		FROM subjects s
		JOIN careers c ON c.id = s.career_id
		LEFT JOIN enrollments e ON e.subject_id = s.id`

	var args []interface{}
	if careerID != "" {
		args = append(args, careerID)
		query += " WHERE s.career_id = $1"
	}
	query += `
		GROUP BY s.id, s.name, c.name, s.max_quota, s.available_quota
		ORDER BY c.name, s.name`

	rows := []models.SubjectOccupancy{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("subject occupancy report: %w", err)
	}
	return rows, nil
}

// PeriodSummary returns enrollment volume per academic period.
func (r *ReportRepository) PeriodSummary(ctx context.Context) ([]models.PeriodSummary, error) {
	query := `
		SELECT p.id AS period_id,
		       p.name AS period_name,
		       p.is_active,
		       COUNT(e.id) AS enrollment_count
		FROM academic_periods p
		LEFT JOIN enrollments e ON e.academic_period_id = p.id
		GROUP BY p.id, p.name, p.is_active
		ORDER BY p.start_date DESC`

	rows := []models.PeriodSummary{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("period summary report: %w", err)
	}
	return rows, nil
}

// CareerSummary returns student and enrollment volume per career.
func (r *ReportRepository) CareerSummary(ctx context.Context) ([]models.CareerSummary, error) {
	query := `
		SELECT c.id AS career_id,
		       c.name AS career_name,
		       COUNT(DISTINCT st.id) AS student_count,
		       COUNT(e.id) AS enrollment_count
		FROM careers c
		LEFT JOIN students st ON st.career_id = c.id
		LEFT JOIN enrollments e ON e.student_id = st.id
		GROUP BY c.id, c.name
		ORDER BY c.name`

	rows := []models.CareerSummary{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("career summary report: %w", err)
	}
	return rows, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniadmin/uniadmin-api/internal/models"
)

// EnrollmentRepository is the durable enrollment ledger. Mutating methods
// take an sqlx.ExtContext so the coordinator can run them inside a single
// transaction together with the quota updates.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN students st ON st.id = e.student_id
LEFT JOIN subjects su ON su.id = e.subject_id
LEFT JOIN academic_periods p ON p.id = e.academic_period_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.AcademicPeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("e.academic_period_id = $%d", len(args)+1))
		args = append(args, filter.AcademicPeriodID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_name": "student_name",
		"subject_name": "su.name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.enrolled_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.subject_id, e.academic_period_id, e.enrolled_at,
        st.first_name || ' ' || st.last_name AS student_name, su.name AS subject_name, p.name AS period_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindDetailByID returns an enrollment with contextual info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.subject_id, e.academic_period_id, e.enrolled_at,
        st.first_name || ' ' || st.last_name AS student_name, su.name AS subject_name, p.name AS period_name
        FROM enrollments e
        LEFT JOIN students st ON st.id = e.student_id
        LEFT JOIN subjects su ON su.id = e.subject_id
        LEFT JOIN academic_periods p ON p.id = e.academic_period_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByIDForUpdate loads an enrollment inside the caller's transaction and
// locks the row so concurrent reassign/withdraw calls serialize on it.
func (r *EnrollmentRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, subject_id, academic_period_id, enrolled_at FROM enrollments WHERE id = $1 FOR UPDATE`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, exec, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether a live enrollment already holds the triple.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, subjectID, periodID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM enrollments WHERE student_id = $1 AND subject_id = $2 AND academic_period_id = $3"
	args := []interface{}{studentID, subjectID, periodID}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"

	var exists int
	if err := sqlx.GetContext(ctx, exec, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Insert persists a new enrollment row within the caller's transaction.
func (r *EnrollmentRepository) Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, subject_id, academic_period_id, enrolled_at)
        VALUES (:id, :student_id, :subject_id, :academic_period_id, :enrolled_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// UpdateSubject moves an enrollment to another subject within the caller's
// transaction.
func (r *EnrollmentRepository) UpdateSubject(ctx context.Context, exec sqlx.ExtContext, id, subjectID string) error {
	const query = `UPDATE enrollments SET subject_id = $2 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, subjectID); err != nil {
		return fmt.Errorf("reassign enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment row within the caller's transaction.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// CountBySubject returns the number of live rows for a subject.
func (r *EnrollmentRepository) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, fmt.Errorf("count enrollments by subject: %w", err)
	}
	return count, nil
}

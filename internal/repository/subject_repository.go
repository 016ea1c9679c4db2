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

// SubjectRepository handles persistence for subjects and their seat quotas.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching filters with pagination metadata.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	base := `FROM subjects s
LEFT JOIN careers ca ON ca.id = s.career_id
LEFT JOIN cycles cy ON cy.id = s.cycle_id`
	var conditions []string
	var args []interface{}

	if filter.CareerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.career_id = $%d", len(args)+1))
		args = append(args, filter.CareerID)
	}
	if filter.CycleID != "" {
		conditions = append(conditions, fmt.Sprintf("s.cycle_id = $%d", len(args)+1))
		args = append(args, filter.CycleID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"name":            "s.name",
		"credits":         "s.credits",
		"available_quota": "s.available_quota",
		"created_at":      "s.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "s.created_at"
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

	query := fmt.Sprintf(`SELECT s.id, s.name, s.credits, s.max_quota, s.available_quota, s.career_id, s.cycle_id,
        s.created_at, s.updated_at, ca.name AS career_name, cy.name AS cycle_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	return subjects, total, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, credits, max_quota, available_quota, career_id, cycle_id, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// LockByID loads a subject inside the caller's transaction holding a row
// lock until commit. Concurrent enrollment operations on the same subject
// serialize here.
func (r *SubjectRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error) {
	const query = `SELECT id, name, credits, max_quota, available_quota, career_id, cycle_id, created_at, updated_at FROM subjects WHERE id = $1 FOR UPDATE`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, exec, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// DecrementQuota atomically takes one seat. It reports false when no seat
// remained, leaving the row untouched.
func (r *SubjectRepository) DecrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `UPDATE subjects SET available_quota = available_quota - 1, updated_at = $2 WHERE id = $1 AND available_quota > 0`
	res, err := exec.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("decrement subject quota: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrement subject quota: %w", err)
	}
	return affected == 1, nil
}

// IncrementQuota returns one seat to the subject, capped at max_quota so a
// stray double release cannot push the counter past capacity.
func (r *SubjectRepository) IncrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE subjects SET available_quota = LEAST(available_quota + 1, max_quota), updated_at = $2 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment subject quota: %w", err)
	}
	return nil
}

// ExistsByName checks uniqueness of the (career, cycle, name) triple.
func (r *SubjectRepository) ExistsByName(ctx context.Context, careerID, cycleID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE career_id = $1 AND cycle_id = $2 AND LOWER(name) = LOWER($3)"
	args := []interface{}{careerID, cycleID, name}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"

	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject name: %w", err)
	}
	return true, nil
}

// Create persists a new subject. AvailableQuota starts at MaxQuota.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, credits, max_quota, available_quota, career_id, cycle_id, created_at, updated_at)
        VALUES (:id, :name, :credits, :max_quota, :available_quota, :career_id, :cycle_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject including its quota counters.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, credits = :credits, max_quota = :max_quota, available_quota = :available_quota,
        career_id = :career_id, cycle_id = :cycle_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject record.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// CountEnrollments returns the number of live enrollments referencing the subject.
func (r *SubjectRepository) CountEnrollments(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count subject enrollments: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniadmin/uniadmin-api/internal/models"
)

// CareerRepository handles persistence for careers.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository creates a new repository instance.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// List returns careers joined with their specialty.
func (r *CareerRepository) List(ctx context.Context) ([]models.CareerDetail, error) {
	const query = `SELECT c.id, c.name, c.total_cycles, c.duration_years, c.specialty_id, c.created_at, c.updated_at,
        sp.name AS specialty_name
        FROM careers c LEFT JOIN specialties sp ON sp.id = c.specialty_id ORDER BY c.name ASC`
	var careers []models.CareerDetail
	if err := r.db.SelectContext(ctx, &careers, query); err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return careers, nil
}

// FindByID returns a career by id.
func (r *CareerRepository) FindByID(ctx context.Context, id string) (*models.Career, error) {
	const query = `SELECT id, name, total_cycles, duration_years, specialty_id, created_at, updated_at FROM careers WHERE id = $1`
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, id); err != nil {
		return nil, err
	}
	return &career, nil
}

// ExistsByName checks name uniqueness.
func (r *CareerRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM careers WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check career name: %w", err)
	}
	return true, nil
}

// Create persists a new career.
func (r *CareerRepository) Create(ctx context.Context, career *models.Career) error {
	if career.ID == "" {
		career.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if career.CreatedAt.IsZero() {
		career.CreatedAt = now
	}
	career.UpdatedAt = now

	const query = `INSERT INTO careers (id, name, total_cycles, duration_years, specialty_id, created_at, updated_at)
        VALUES (:id, :name, :total_cycles, :duration_years, :specialty_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("create career: %w", err)
	}
	return nil
}

// Update modifies a career.
func (r *CareerRepository) Update(ctx context.Context, career *models.Career) error {
	career.UpdatedAt = time.Now().UTC()
	const query = `UPDATE careers SET name = :name, total_cycles = :total_cycles, duration_years = :duration_years,
        specialty_id = :specialty_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("update career: %w", err)
	}
	return nil
}

// Delete removes a career.
func (r *CareerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM careers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete career: %w", err)
	}
	return nil
}

// CountStudents returns the number of students referencing the career.
func (r *CareerRepository) CountStudents(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE career_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count career students: %w", err)
	}
	return count, nil
}

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

// SpecialtyRepository handles persistence for specialties.
type SpecialtyRepository struct {
	db *sqlx.DB
}

// NewSpecialtyRepository creates a new repository instance.
func NewSpecialtyRepository(db *sqlx.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

// List returns all specialties ordered by name.
func (r *SpecialtyRepository) List(ctx context.Context) ([]models.Specialty, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM specialties ORDER BY name ASC`
	var specialties []models.Specialty
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	return specialties, nil
}

// FindByID returns a specialty by id.
func (r *SpecialtyRepository) FindByID(ctx context.Context, id string) (*models.Specialty, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM specialties WHERE id = $1`
	var specialty models.Specialty
	if err := r.db.GetContext(ctx, &specialty, query, id); err != nil {
		return nil, err
	}
	return &specialty, nil
}

// ExistsByName checks name uniqueness.
func (r *SpecialtyRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM specialties WHERE LOWER(name) = LOWER($1)"
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
		return false, fmt.Errorf("check specialty name: %w", err)
	}
	return true, nil
}

// Create persists a new specialty.
func (r *SpecialtyRepository) Create(ctx context.Context, specialty *models.Specialty) error {
	if specialty.ID == "" {
		specialty.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if specialty.CreatedAt.IsZero() {
		specialty.CreatedAt = now
	}
	specialty.UpdatedAt = now

	const query = `INSERT INTO specialties (id, name, description, created_at, updated_at)
        VALUES (:id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, specialty); err != nil {
		return fmt.Errorf("create specialty: %w", err)
	}
	return nil
}

// Update modifies a specialty.
func (r *SpecialtyRepository) Update(ctx context.Context, specialty *models.Specialty) error {
	specialty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE specialties SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, specialty); err != nil {
		return fmt.Errorf("update specialty: %w", err)
	}
	return nil
}

// Delete removes a specialty.
func (r *SpecialtyRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM specialties WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete specialty: %w", err)
	}
	return nil
}

// CountCareers returns the number of careers referencing the specialty.
func (r *SpecialtyRepository) CountCareers(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM careers WHERE specialty_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count specialty careers: %w", err)
	}
	return count, nil
}

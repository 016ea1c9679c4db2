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

// CycleRepository handles persistence for curriculum cycles.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository creates a new repository instance.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// List returns all cycles ordered by number.
func (r *CycleRepository) List(ctx context.Context) ([]models.Cycle, error) {
	const query = `SELECT id, name, number, created_at, updated_at FROM cycles ORDER BY number ASC`
	var cycles []models.Cycle
	if err := r.db.SelectContext(ctx, &cycles, query); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// FindByID returns a cycle by id.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.Cycle, error) {
	const query = `SELECT id, name, number, created_at, updated_at FROM cycles WHERE id = $1`
	var cycle models.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// ExistsByNumber checks ordinal uniqueness.
func (r *CycleRepository) ExistsByNumber(ctx context.Context, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM cycles WHERE number = $1"
	args := []interface{}{number}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check cycle number: %w", err)
	}
	return true, nil
}

// Create persists a new cycle.
func (r *CycleRepository) Create(ctx context.Context, cycle *models.Cycle) error {
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cycle.CreatedAt.IsZero() {
		cycle.CreatedAt = now
	}
	cycle.UpdatedAt = now

	const query = `INSERT INTO cycles (id, name, number, created_at, updated_at)
        VALUES (:id, :name, :number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}

// Update modifies a cycle.
func (r *CycleRepository) Update(ctx context.Context, cycle *models.Cycle) error {
	cycle.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cycles SET name = :name, number = :number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("update cycle: %w", err)
	}
	return nil
}

// Delete removes a cycle.
func (r *CycleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cycles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}
	return nil
}

// CountSubjects returns the number of subjects referencing the cycle.
func (r *CycleRepository) CountSubjects(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM subjects WHERE cycle_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count cycle subjects: %w", err)
	}
	return count, nil
}

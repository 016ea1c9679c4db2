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

// TeacherSubjectRepository persists teacher-subject assignments.
type TeacherSubjectRepository struct {
	db *sqlx.DB
}

// NewTeacherSubjectRepository constructs the repository.
func NewTeacherSubjectRepository(db *sqlx.DB) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{db: db}
}

// List returns all assignments with display names.
func (r *TeacherSubjectRepository) List(ctx context.Context) ([]models.TeacherSubjectDetail, error) {
	const query = `SELECT ts.id, ts.teacher_id, ts.subject_id, ts.created_at,
        t.first_name || ' ' || t.last_name AS teacher_name, s.name AS subject_name
        FROM teacher_subjects ts
        LEFT JOIN teachers t ON t.id = ts.teacher_id
        LEFT JOIN subjects s ON s.id = ts.subject_id
        ORDER BY ts.created_at DESC`
	var linkages []models.TeacherSubjectDetail
	if err := r.db.SelectContext(ctx, &linkages, query); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return linkages, nil
}

// FindByID returns an assignment by id.
func (r *TeacherSubjectRepository) FindByID(ctx context.Context, id string) (*models.TeacherSubject, error) {
	const query = `SELECT id, teacher_id, subject_id, created_at FROM teacher_subjects WHERE id = $1`
	var linkage models.TeacherSubject
	if err := r.db.GetContext(ctx, &linkage, query, id); err != nil {
		return nil, err
	}
	return &linkage, nil
}

// Exists checks uniqueness of the (teacher, subject) pair.
func (r *TeacherSubjectRepository) Exists(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return true, nil
}

// Create persists a new assignment.
func (r *TeacherSubjectRepository) Create(ctx context.Context, linkage *models.TeacherSubject) error {
	if linkage.ID == "" {
		linkage.ID = uuid.NewString()
	}
	if linkage.CreatedAt.IsZero() {
		linkage.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teacher_subjects (id, teacher_id, subject_id, created_at)
        VALUES (:id, :teacher_id, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, linkage); err != nil {
		return fmt.Errorf("create teacher subject: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *TeacherSubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher subject: %w", err)
	}
	return nil
}

// StudentSubjectRepository persists student-subject linkages.
type StudentSubjectRepository struct {
	db *sqlx.DB
}

// NewStudentSubjectRepository constructs the repository.
func NewStudentSubjectRepository(db *sqlx.DB) *StudentSubjectRepository {
	return &StudentSubjectRepository{db: db}
}

// List returns all linkages with display names.
func (r *StudentSubjectRepository) List(ctx context.Context) ([]models.StudentSubjectDetail, error) {
	const query = `SELECT ss.id, ss.student_id, ss.subject_id, ss.created_at,
        st.first_name || ' ' || st.last_name AS student_name, s.name AS subject_name
        FROM student_subjects ss
        LEFT JOIN students st ON st.id = ss.student_id
        LEFT JOIN subjects s ON s.id = ss.subject_id
        ORDER BY ss.created_at DESC`
	var linkages []models.StudentSubjectDetail
	if err := r.db.SelectContext(ctx, &linkages, query); err != nil {
		return nil, fmt.Errorf("list student subjects: %w", err)
	}
	return linkages, nil
}

// FindByID returns a linkage by id.
func (r *StudentSubjectRepository) FindByID(ctx context.Context, id string) (*models.StudentSubject, error) {
	const query = `SELECT id, student_id, subject_id, created_at FROM student_subjects WHERE id = $1`
	var linkage models.StudentSubject
	if err := r.db.GetContext(ctx, &linkage, query, id); err != nil {
		return nil, err
	}
	return &linkage, nil
}

// Exists checks uniqueness of the (student, subject) pair.
func (r *StudentSubjectRepository) Exists(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM student_subjects WHERE student_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student subject: %w", err)
	}
	return true, nil
}

// Create persists a new linkage.
func (r *StudentSubjectRepository) Create(ctx context.Context, linkage *models.StudentSubject) error {
	if linkage.ID == "" {
		linkage.ID = uuid.NewString()
	}
	if linkage.CreatedAt.IsZero() {
		linkage.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_subjects (id, student_id, subject_id, created_at)
        VALUES (:id, :student_id, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, linkage); err != nil {
		return fmt.Errorf("create student subject: %w", err)
	}
	return nil
}

// Delete removes a linkage.
func (r *StudentSubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student subject: %w", err)
	}
	return nil
}

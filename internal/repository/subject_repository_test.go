package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryLockByID(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "credits", "max_quota", "available_quota", "career_id", "cycle_id", "created_at", "updated_at"}).
		AddRow("sub-1", "Algebra", 3, 10, 4, "car-1", "cyc-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, credits, max_quota, available_quota, career_id, cycle_id, created_at, updated_at FROM subjects WHERE id = $1 FOR UPDATE")).
		WithArgs("sub-1").
		WillReturnRows(rows)

	subject, err := repo.LockByID(context.Background(), db, "sub-1")
	require.NoError(t, err)
	require.Equal(t, 4, subject.AvailableQuota)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDecrementQuota(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET available_quota = available_quota - 1, updated_at = $2 WHERE id = $1 AND available_quota > 0")).
		WithArgs("sub-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	taken, err := repo.DecrementQuota(context.Background(), db, "sub-1")
	require.NoError(t, err)
	require.True(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDecrementQuotaEmpty(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	// The guard clause matches no row when the counter is already zero.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET available_quota = available_quota - 1, updated_at = $2 WHERE id = $1 AND available_quota > 0")).
		WithArgs("sub-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	taken, err := repo.DecrementQuota(context.Background(), db, "sub-1")
	require.NoError(t, err)
	require.False(t, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryIncrementQuota(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects SET available_quota = LEAST(available_quota + 1, max_quota), updated_at = $2 WHERE id = $1")).
		WithArgs("sub-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementQuota(context.Background(), db, "sub-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE career_id = $1 AND cycle_id = $2 AND LOWER(name) = LOWER($3) LIMIT 1")).
		WithArgs("car-1", "cyc-1", "Algebra").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "car-1", "cyc-1", "Algebra", "")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByNameExcludesSelf(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE career_id = $1 AND cycle_id = $2 AND LOWER(name) = LOWER($3) AND id <> $4 LIMIT 1")).
		WithArgs("car-1", "cyc-1", "Algebra", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByName(context.Background(), "car-1", "cyc-1", "Algebra", "sub-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

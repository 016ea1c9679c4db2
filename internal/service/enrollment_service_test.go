package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type mockEnrollmentLedger struct {
	enrollments map[string]models.Enrollment
	exists      bool
	inserted    *models.Enrollment
	updated     map[string]string
	deleted     []string
}

func (m *mockEnrollmentLedger) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentLedger) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentLedger) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentLedger) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, subjectID, periodID, excludeID string) (bool, error) {
	return m.exists, nil
}

func (m *mockEnrollmentLedger) Insert(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.inserted = enrollment
	return nil
}

func (m *mockEnrollmentLedger) UpdateSubject(ctx context.Context, exec sqlx.ExtContext, id, subjectID string) error {
	if m.updated == nil {
		m.updated = make(map[string]string)
	}
	m.updated[id] = subjectID
	if e, ok := m.enrollments[id]; ok {
		e.SubjectID = subjectID
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentLedger) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.enrollments, id)
	return nil
}

type mockSubjectQuota struct {
	subjects      map[string]*models.Subject
	lockOrder     []string
	released      []string
	denyDecrement bool
}

func (m *mockSubjectQuota) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	m.lockOrder = append(m.lockOrder, id)
	locked := *s
	return &locked, nil
}

func (m *mockSubjectQuota) DecrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	s, ok := m.subjects[id]
	if !ok {
		return false, nil
	}
	if m.denyDecrement || s.AvailableQuota <= 0 {
		return false, nil
	}
	s.AvailableQuota--
	return true, nil
}

func (m *mockSubjectQuota) IncrementQuota(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if s, ok := m.subjects[id]; ok && s.AvailableQuota < s.MaxQuota {
		s.AvailableQuota++
	}
	m.released = append(m.released, id)
	return nil
}

type mockStudentTxReader struct {
	students map[string]*models.Student
}

func (m *mockStudentTxReader) FindByIDTx(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockPeriodTxReader struct {
	periods map[string]*models.AcademicPeriod
}

func (m *mockPeriodTxReader) FindByIDTx(ctx context.Context, exec sqlx.ExtContext, id string) (*models.AcademicPeriod, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func newTxDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func activeStudent(id string) *models.Student {
	return &models.Student{ID: id, IsActive: true}
}

func activePeriod(id string) *models.AcademicPeriod {
	return &models.AcademicPeriod{ID: id, IsActive: true}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ledger := &mockEnrollmentLedger{}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-1": {ID: "sub-1", MaxQuota: 2, AvailableQuota: 1},
	}}
	svc := NewEnrollmentService(db,
		ledger,
		subjects,
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}},
		&mockPeriodTxReader{periods: map[string]*models.AcademicPeriod{"per-1": activePeriod("per-1")}},
		validator.New(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.NoError(t, err)
	require.NotNil(t, ledger.inserted)
	assert.Equal(t, "stu-1", enrollment.StudentID)
	assert.Equal(t, 0, subjects.subjects["sub-1"].AvailableQuota)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollStudentNotFound(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewEnrollmentService(db,
		&mockEnrollmentLedger{},
		&mockSubjectQuota{},
		&mockStudentTxReader{},
		&mockPeriodTxReader{},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "ghost", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollInactiveStudent(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewEnrollmentService(db,
		&mockEnrollmentLedger{},
		&mockSubjectQuota{},
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": {ID: "stu-1", IsActive: false}}},
		&mockPeriodTxReader{},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollInactivePeriod(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewEnrollmentService(db,
		&mockEnrollmentLedger{},
		&mockSubjectQuota{},
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}},
		&mockPeriodTxReader{periods: map[string]*models.AcademicPeriod{"per-1": {ID: "per-1", IsActive: false}}},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPreconditionFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-1": {ID: "sub-1", MaxQuota: 5, AvailableQuota: 5},
	}}
	svc := NewEnrollmentService(db,
		&mockEnrollmentLedger{exists: true},
		subjects,
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}},
		&mockPeriodTxReader{periods: map[string]*models.AcademicPeriod{"per-1": activePeriod("per-1")}},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 5, subjects.subjects["sub-1"].AvailableQuota)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollQuotaExhausted(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ledger := &mockEnrollmentLedger{}
	svc := NewEnrollmentService(db,
		ledger,
		&mockSubjectQuota{subjects: map[string]*models.Subject{
			"sub-1": {ID: "sub-1", MaxQuota: 3, AvailableQuota: 0},
		}},
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}},
		&mockPeriodTxReader{periods: map[string]*models.AcademicPeriod{"per-1": activePeriod("per-1")}},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrQuotaExhausted))
	assert.Nil(t, ledger.inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollDecrementRace(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// The locked snapshot shows a seat but the guarded decrement loses it.
	ledger := &mockEnrollmentLedger{}
	svc := NewEnrollmentService(db,
		ledger,
		&mockSubjectQuota{
			subjects:      map[string]*models.Subject{"sub-1": {ID: "sub-1", MaxQuota: 3, AvailableQuota: 1}},
			denyDecrement: true,
		},
		&mockStudentTxReader{students: map[string]*models.Student{"stu-1": activeStudent("stu-1")}},
		&mockPeriodTxReader{periods: map[string]*models.AcademicPeriod{"per-1": activePeriod("per-1")}},
		validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1", SubjectID: "sub-1", AcademicPeriodID: "per-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrQuotaExhausted))
	assert.Nil(t, ledger.inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceEnrollMissingFields(t *testing.T) {
	svc := NewEnrollmentService(nil, &mockEnrollmentLedger{}, &mockSubjectQuota{}, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "stu-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEnrollmentServiceReassign(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ledger := &mockEnrollmentLedger{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", SubjectID: "sub-b", AcademicPeriodID: "per-1"},
	}}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-a": {ID: "sub-a", MaxQuota: 2, AvailableQuota: 1},
		"sub-b": {ID: "sub-b", MaxQuota: 2, AvailableQuota: 0},
	}}
	svc := NewEnrollmentService(db, ledger, subjects, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	enrollment, err := svc.Reassign(context.Background(), "enr-1", ReassignRequest{SubjectID: "sub-a"})
	require.NoError(t, err)
	assert.Equal(t, "sub-a", enrollment.SubjectID)
	assert.Equal(t, "sub-a", ledger.updated["enr-1"])
	// One seat moved: consumed on the target, released on the source.
	assert.Equal(t, 0, subjects.subjects["sub-a"].AvailableQuota)
	assert.Equal(t, 1, subjects.subjects["sub-b"].AvailableQuota)
	// Locks are taken in ascending subject ID order.
	assert.Equal(t, []string{"sub-a", "sub-b"}, subjects.lockOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceReassignSameSubjectNoOp(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ledger := &mockEnrollmentLedger{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", SubjectID: "sub-a", AcademicPeriodID: "per-1"},
	}}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-a": {ID: "sub-a", MaxQuota: 2, AvailableQuota: 1},
	}}
	svc := NewEnrollmentService(db, ledger, subjects, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	enrollment, err := svc.Reassign(context.Background(), "enr-1", ReassignRequest{SubjectID: "sub-a"})
	require.NoError(t, err)
	assert.Equal(t, "sub-a", enrollment.SubjectID)
	// No seat moves and no lock beyond the enrollment row itself.
	assert.Equal(t, 1, subjects.subjects["sub-a"].AvailableQuota)
	assert.Empty(t, subjects.lockOrder)
	assert.Empty(t, ledger.updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceReassignTargetNotFound(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ledger := &mockEnrollmentLedger{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", SubjectID: "sub-a", AcademicPeriodID: "per-1"},
	}}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-a": {ID: "sub-a", MaxQuota: 2, AvailableQuota: 1},
	}}
	svc := NewEnrollmentService(db, ledger, subjects, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	_, err := svc.Reassign(context.Background(), "enr-1", ReassignRequest{SubjectID: "sub-z"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceReassignTargetFull(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ledger := &mockEnrollmentLedger{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", SubjectID: "sub-a", AcademicPeriodID: "per-1"},
	}}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-a": {ID: "sub-a", MaxQuota: 2, AvailableQuota: 1},
		"sub-b": {ID: "sub-b", MaxQuota: 2, AvailableQuota: 0},
	}}
	svc := NewEnrollmentService(db, ledger, subjects, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	_, err := svc.Reassign(context.Background(), "enr-1", ReassignRequest{SubjectID: "sub-b"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrQuotaExhausted))
	// The source seat is untouched when the move is refused.
	assert.Equal(t, 1, subjects.subjects["sub-a"].AvailableQuota)
	assert.Empty(t, subjects.released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceWithdraw(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ledger := &mockEnrollmentLedger{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: "stu-1", SubjectID: "sub-a", AcademicPeriodID: "per-1"},
	}}
	subjects := &mockSubjectQuota{subjects: map[string]*models.Subject{
		"sub-a": {ID: "sub-a", MaxQuota: 2, AvailableQuota: 0},
	}}
	svc := NewEnrollmentService(db, ledger, subjects, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	err := svc.Withdraw(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Contains(t, ledger.deleted, "enr-1")
	assert.Equal(t, 1, subjects.subjects["sub-a"].AvailableQuota)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentServiceWithdrawNotFound(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewEnrollmentService(db, &mockEnrollmentLedger{}, &mockSubjectQuota{}, &mockStudentTxReader{}, &mockPeriodTxReader{}, validator.New(), zap.NewNop())

	err := svc.Withdraw(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

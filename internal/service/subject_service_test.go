package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects    map[string]models.Subject
	nameTaken   bool
	enrollments int
	updated     *models.Subject
	deleted     []string
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	return nil, 0, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) ExistsByName(ctx context.Context, careerID, cycleID, name, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = "new-subject"
	}
	if m.subjects == nil {
		m.subjects = make(map[string]models.Subject)
	}
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = *subject
	m.updated = subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) CountEnrollments(ctx context.Context, id string) (int, error) {
	return m.enrollments, nil
}

type mockCareerReader struct{}

func (m *mockCareerReader) FindByID(ctx context.Context, id string) (*models.Career, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Career{ID: id}, nil
}

type mockCycleReader struct{}

func (m *mockCycleReader) FindByID(ctx context.Context, id string) (*models.Cycle, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Cycle{ID: id}, nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &mockSubjectRepo{}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:     "Distributed Systems",
		Credits:  4,
		MaxQuota: 30,
		CareerID: "car-1",
		CycleID:  "cyc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, subject.MaxQuota)
	assert.Equal(t, 30, subject.AvailableQuota)
}

func TestSubjectServiceCreateDuplicateName(t *testing.T) {
	repo := &mockSubjectRepo{nameTaken: true}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:     "Distributed Systems",
		Credits:  4,
		MaxQuota: 30,
		CareerID: "car-1",
		CycleID:  "cyc-1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestSubjectServiceCreateCareerNotFound(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:     "Distributed Systems",
		Credits:  4,
		MaxQuota: 30,
		CareerID: "missing",
		CycleID:  "cyc-1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSubjectServiceUpdateQuotaAdjustment(t *testing.T) {
	// 6 of 10 seats occupied; shrinking max to 8 must leave 2 available.
	repo := &mockSubjectRepo{subjects: map[string]models.Subject{
		"sub-1": {ID: "sub-1", Name: "Algebra", Credits: 3, MaxQuota: 10, AvailableQuota: 4, CareerID: "car-1", CycleID: "cyc-1"},
	}}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	subject, err := svc.Update(context.Background(), "sub-1", UpdateSubjectRequest{
		Name:     "Algebra",
		Credits:  3,
		MaxQuota: 8,
		CareerID: "car-1",
		CycleID:  "cyc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, subject.MaxQuota)
	assert.Equal(t, 2, subject.AvailableQuota)
}

func TestSubjectServiceUpdateQuotaBelowOccupancy(t *testing.T) {
	repo := &mockSubjectRepo{subjects: map[string]models.Subject{
		"sub-1": {ID: "sub-1", Name: "Algebra", Credits: 3, MaxQuota: 10, AvailableQuota: 3, CareerID: "car-1", CycleID: "cyc-1"},
	}}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	subject, err := svc.Update(context.Background(), "sub-1", UpdateSubjectRequest{
		Name:     "Algebra",
		Credits:  3,
		MaxQuota: 5,
		CareerID: "car-1",
		CycleID:  "cyc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, subject.AvailableQuota)
}

func TestSubjectServiceDeleteWithEnrollments(t *testing.T) {
	repo := &mockSubjectRepo{
		subjects:    map[string]models.Subject{"sub-1": {ID: "sub-1"}},
		enrollments: 3,
	}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sub-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.deleted)
}

func TestSubjectServiceDelete(t *testing.T) {
	repo := &mockSubjectRepo{subjects: map[string]models.Subject{"sub-1": {ID: "sub-1"}}}
	svc := NewSubjectService(repo, &mockCareerReader{}, &mockCycleReader{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "sub-1")
}

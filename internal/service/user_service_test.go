package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniadmin/uniadmin-api/internal/models"
	appErrors "github.com/uniadmin/uniadmin-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]*models.User
	roles         map[string]*models.Role
	userRoles     map[string][]string
	taken         bool
	assigned      [][2]string
	revoked       [][2]string
	revokedTokens []string
	deleted       []string
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error) {
	return m.taken, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-user"
	}
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) ListRoles(ctx context.Context, userID string) ([]string, error) {
	return m.userRoles[userID], nil
}

func (m *mockUserRepo) ListAllRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	for _, r := range m.roles {
		roles = append(roles, *r)
	}
	return roles, nil
}

func (m *mockUserRepo) FindRoleByID(ctx context.Context, id string) (*models.Role, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsRoleByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, r := range m.roles {
		if r.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) CreateRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = "new-role"
	}
	if m.roles == nil {
		m.roles = make(map[string]*models.Role)
	}
	m.roles[role.ID] = role
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, role *models.Role) error {
	m.roles[role.ID] = role
	return nil
}

func (m *mockUserRepo) DeleteRole(ctx context.Context, id string) error {
	delete(m.roles, id)
	return nil
}

func (m *mockUserRepo) CountRoleAssignments(ctx context.Context, roleID string) (int, error) {
	count := 0
	for _, assigned := range m.userRoles {
		for _, id := range assigned {
			if id == roleID {
				count++
			}
		}
	}
	return count, nil
}

func (m *mockUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	m.assigned = append(m.assigned, [2]string{userID, roleID})
	return nil
}

func (m *mockUserRepo) RevokeRole(ctx context.Context, userID, roleID string) error {
	m.revoked = append(m.revoked, [2]string{userID, roleID})
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedTokens = append(m.revokedTokens, userID)
	return nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "J Doe",
		Email:    "jdoe@example.edu",
		Username: "jdoe",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestUserServiceCreateDuplicate(t *testing.T) {
	svc := NewUserService(&mockUserRepo{taken: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "J Doe",
		Email:    "jdoe@example.edu",
		Username: "jdoe",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestUserServiceUpdateDeactivationRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Name: "J Doe", Email: "jdoe@example.edu", Username: "jdoe", IsActive: true},
	}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	inactive := false
	user, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		Name:     "J Doe",
		Email:    "jdoe@example.edu",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Contains(t, repo.revokedTokens, "u1")
}

func TestUserServiceGetWithRoles(t *testing.T) {
	repo := &mockUserRepo{
		users:     map[string]*models.User{"u1": {ID: "u1", Username: "jdoe"}},
		userRoles: map[string][]string{"u1": {"ADMIN", "AUDITOR"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "AUDITOR"}, detail.Roles)
}

func TestUserServiceAssignRole(t *testing.T) {
	repo := &mockUserRepo{
		users: map[string]*models.User{"u1": {ID: "u1"}},
		roles: map[string]*models.Role{"r1": {ID: "r1", Name: "COORDINATOR"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.AssignRole(context.Background(), "u1", RoleAssignmentRequest{RoleID: "r1"})
	require.NoError(t, err)
	assert.Contains(t, repo.assigned, [2]string{"u1", "r1"})
}

func TestUserServiceAssignUnknownRole(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{"u1": {ID: "u1"}}}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.AssignRole(context.Background(), "u1", RoleAssignmentRequest{RoleID: "ghost"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.assigned)
}

func TestUserServiceCreateRole(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	role, err := svc.CreateRole(context.Background(), RoleRequest{Name: "REGISTRAR", Description: "enrollment desk"})
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.Equal(t, "REGISTRAR", role.Name)
}

func TestUserServiceCreateRoleDuplicateName(t *testing.T) {
	repo := &mockUserRepo{
		roles: map[string]*models.Role{"r1": {ID: "r1", Name: "REGISTRAR"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	_, err := svc.CreateRole(context.Background(), RoleRequest{Name: "REGISTRAR"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestUserServiceUpdateRoleKeepsOwnName(t *testing.T) {
	repo := &mockUserRepo{
		roles: map[string]*models.Role{"r1": {ID: "r1", Name: "REGISTRAR"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	role, err := svc.UpdateRole(context.Background(), "r1", RoleRequest{Name: "REGISTRAR", Description: "front office"})
	require.NoError(t, err)
	assert.Equal(t, "front office", role.Description)
}

func TestUserServiceDeleteRoleStillAssigned(t *testing.T) {
	repo := &mockUserRepo{
		roles:     map[string]*models.Role{"r1": {ID: "r1", Name: "REGISTRAR"}},
		userRoles: map[string][]string{"u1": {"r1"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.DeleteRole(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, repo.roles, "r1")
}

func TestUserServiceDeleteRole(t *testing.T) {
	repo := &mockUserRepo{
		roles: map[string]*models.Role{"r1": {ID: "r1", Name: "REGISTRAR"}},
	}
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.DeleteRole(context.Background(), "r1")
	require.NoError(t, err)
	assert.NotContains(t, repo.roles, "r1")
}

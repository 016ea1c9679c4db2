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

type mockAuthUserRepo struct {
	users          map[string]*models.User
	roles          map[string][]string
	tokens         map[string]*models.RefreshToken
	created        []*models.RefreshToken
	revoked        []string
	revokedAllFor  []string
	passwordUpdate map[string]string
}

func (m *mockAuthUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) ListRoles(ctx context.Context, userID string) ([]string, error) {
	return m.roles[userID], nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.passwordUpdate == nil {
		m.passwordUpdate = make(map[string]string)
	}
	m.passwordUpdate[id] = passwordHash
	return nil
}

func (m *mockAuthUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAllFor = append(m.revokedAllFor, userID)
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
	}
	m.tokens[token.Token] = token
	m.created = append(m.created, token)
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

type mockAuditRecorder struct {
	entries []*models.AuditLog
}

func (m *mockAuditRecorder) InsertAuditLog(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "uniadmin",
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", Name: "J Doe", PasswordHash: hashPassword(t, "secret123"), IsActive: true},
		},
		roles: map[string][]string{"u1": {"COORDINATOR"}},
	}
	audit := &mockAuditRecorder{}
	svc := NewAuthService(repo, audit, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, []string{"COORDINATOR"}, resp.User.Roles)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{"COORDINATOR"}, claims.Roles)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", PasswordHash: hashPassword(t, "secret123"), IsActive: true},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", PasswordHash: hashPassword(t, "secret123"), IsActive: false},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceSingleSessionRevokesPrevious(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", PasswordHash: hashPassword(t, "secret123"), IsActive: true},
		},
	}
	cfg := testAuthConfig()
	cfg.SingleSession = true
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), cfg)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedAllFor, "u1")
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", IsActive: true},
		},
		tokens: map[string]*models.RefreshToken{
			"old-token": {ID: "rt-1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	// The consumed token must be revoked so it cannot be replayed.
	assert.Contains(t, repo.revoked, "rt-1")
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{"u1": {ID: "u1", IsActive: true}},
		tokens: map[string]*models.RefreshToken{
			"old-token": {ID: "rt-1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().UTC().Add(-time.Minute)},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockAuthUserRepo{
		tokens: map[string]*models.RefreshToken{
			"tok": {ID: "rt-1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "tok", "u1", "127.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Contains(t, repo.revoked, "rt-1")
}

func TestAuthServiceLogoutForeignToken(t *testing.T) {
	repo := &mockAuthUserRepo{
		tokens: map[string]*models.RefreshToken{
			"tok": {ID: "rt-1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.Logout(context.Background(), "tok", "u2", "127.0.0.1", "test-agent")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Username: "jdoe", PasswordHash: hashPassword(t, "oldsecret"), IsActive: true},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "oldsecret", NewPassword: "newsecret99"})
	require.NoError(t, err)
	require.Contains(t, repo.passwordUpdate, "u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordUpdate["u1"]), []byte("newsecret99")))
	// A password change invalidates every open session.
	assert.Contains(t, repo.revokedAllFor, "u1")
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	repo := &mockAuthUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", PasswordHash: hashPassword(t, "oldsecret"), IsActive: true},
		},
	}
	svc := NewAuthService(repo, nil, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret99"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.passwordUpdate)
}

func TestAuthServiceValidateTokenBadSignature(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, nil, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

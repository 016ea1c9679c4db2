package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/uniadmin/uniadmin-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u1", Roles: []string{"COORDINATOR"}}, "ADMIN", "COORDINATOR")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsMissingRole(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u1", Roles: []string{"AUDITOR"}}, "ADMIN")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACAllowsSelfAccess(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u1", Roles: []string{"AUDITOR"}}, "ADMIN", "SELF")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsForeignSelfAccess(t *testing.T) {
	r := rbacRouter(&models.JWTClaims{UserID: "u1", Roles: []string{"AUDITOR"}}, "ADMIN", "SELF")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACRequiresAuthentication(t *testing.T) {
	r := rbacRouter(nil, "ADMIN")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

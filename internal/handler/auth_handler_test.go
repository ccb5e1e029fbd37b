package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/becalab/scholarship-api/internal/middleware"
	"github.com/becalab/scholarship-api/internal/models"
	"github.com/becalab/scholarship-api/internal/service"
)

type adminStoreStub struct {
	admin *models.AdminUser
}

func (s *adminStoreStub) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if s.admin != nil && s.admin.Email == email {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func (s *adminStoreStub) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if s.admin != nil && s.admin.ID == id {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthTestHandler(t *testing.T, password string) (*AuthHandler, *models.AdminUser) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.AdminUser{
		ID:           "admin-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         models.AdminRole,
	}
	svc := service.NewAuthService(&adminStoreStub{admin: admin}, nil, nil, nil, service.AuthConfig{
		TokenSecret: "test-secret",
	})
	return NewAuthHandler(svc), admin
}

func TestAuthHandlerLogin(t *testing.T) {
	handler, _ := newAuthTestHandler(t, "s3cret-pass")
	w, c := postJSON(t, "/admin/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "s3cret-pass",
	})

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			Admin       struct {
				Email string `json:"email"`
			} `json:"admin"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "admin@example.com", envelope.Data.Admin.Email)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	handler, _ := newAuthTestHandler(t, "s3cret-pass")
	w, c := postJSON(t, "/admin/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler, admin := newAuthTestHandler(t, "s3cret-pass")
	w, c := getRequest(t, "/admin/auth/me")
	c.Set(middleware.ContextAdminKey, &models.JWTClaims{AdminID: admin.ID, Role: models.AdminRole})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	handler, _ := newAuthTestHandler(t, "s3cret-pass")
	w, c := getRequest(t, "/admin/auth/me")

	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

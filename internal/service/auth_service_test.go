package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/becalab/scholarship-api/internal/models"
	appErrors "github.com/becalab/scholarship-api/pkg/errors"
)

type adminRepoStub struct {
	admin *models.AdminUser
}

func (s *adminRepoStub) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if s.admin != nil && s.admin.Email == email {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func (s *adminRepoStub) FindByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if s.admin != nil && s.admin.ID == id {
		return s.admin, nil
	}
	return nil, sql.ErrNoRows
}

func testAdmin(t *testing.T, password string) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.AdminUser{
		ID:           "admin-1",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         models.AdminRole,
	}
}

func newAuthService(repo *adminRepoStub) *AuthService {
	return NewAuthService(repo, &auditStub{}, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "scholarship-api",
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newAuthService(&adminRepoStub{admin: testAdmin(t, "s3cret-pass")})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "admin-1", resp.Admin.ID)
}

func TestLoginWrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc := newAuthService(&adminRepoStub{admin: testAdmin(t, "s3cret-pass")})

	_, wrongPass := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "not-the-password",
	})
	_, unknownEmail := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	})

	require.Error(t, wrongPass)
	require.Error(t, unknownEmail)
	assert.Equal(t, appErrors.FromError(wrongPass).Code, appErrors.FromError(unknownEmail).Code)
	assert.Equal(t, appErrors.FromError(wrongPass).Message, appErrors.FromError(unknownEmail).Message)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthService(&adminRepoStub{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newAuthService(&adminRepoStub{admin: testAdmin(t, "s3cret-pass")})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, models.AdminRole, claims.Role)
}

func TestValidateTokenRejectsTamperedSecret(t *testing.T) {
	issuer := newAuthService(&adminRepoStub{admin: testAdmin(t, "s3cret-pass")})
	resp, err := issuer.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	verifier := NewAuthService(&adminRepoStub{}, nil, nil, nil, AuthConfig{TokenSecret: "other-secret"})
	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&adminRepoStub{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestMeUnknownAccount(t *testing.T) {
	svc := newAuthService(&adminRepoStub{})

	_, err := svc.Me(context.Background(), &models.JWTClaims{AdminID: "gone"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

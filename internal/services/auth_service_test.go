package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/config"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

func init() {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

func registerPayload() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:           "amina@example.com",
		Password:        "motdepasse123",
		ConfirmPassword: "motdepasse123",
		Name:            "Berrada",
		FirstName:       "Amina",
		Role:            "client",
		MREStatus:       true,
	}
}

func TestRegisterCreatesClientWithProfile(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo)

	response, err := svc.Register(registerPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, models.UserRoleClient, response.User.Role)
	assert.Equal(t, "fr", response.User.Language)

	stored, err := userRepo.FindByEmail("amina@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ClientProfile)
	assert.True(t, stored.ClientProfile.MREStatus)
	assert.NotEqual(t, "motdepasse123", stored.PasswordHash)
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	payload := registerPayload()
	payload.ConfirmPassword = "autrechose123"
	_, err := svc.Register(payload)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrPasswordMismatch, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(registerPayload())
	require.NoError(t, err)

	_, err = svc.Register(registerPayload())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrEmailAlreadyExists, err)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	payload := registerPayload()
	payload.Role = "admin"
	_, err := svc.Register(payload)
	assert.Error(t, err)
}

func TestLoginChecksCredentials(t *testing.T) {
	hash, err := auth.HashPassword("motdepasse123")
	require.NoError(t, err)

	user := &models.User{
		Email:        "amina@example.com",
		PasswordHash: hash,
		Role:         models.UserRoleClient,
		FirstName:    "Amina",
		Name:         "Berrada",
		IsActive:     true,
	}
	svc := NewAuthService(newFakeUserRepo(user))

	_, err = svc.Login(dto.LoginRequest{Email: "amina@example.com", Password: "mauvais"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	_, err = svc.Login(dto.LoginRequest{Email: "inconnue@example.com", Password: "motdepasse123"})
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	response, err := svc.Login(dto.LoginRequest{Email: "amina@example.com", Password: "motdepasse123"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	hash, err := auth.HashPassword("motdepasse123")
	require.NoError(t, err)

	user := &models.User{
		Email:        "amina@example.com",
		PasswordHash: hash,
		Role:         models.UserRoleClient,
		IsActive:     false,
	}
	svc := NewAuthService(newFakeUserRepo(user))

	_, err = svc.Login(dto.LoginRequest{Email: "amina@example.com", Password: "motdepasse123"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAccountDisabled, err)
}

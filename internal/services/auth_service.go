package services

import (
	"time"

	"github.com/google/uuid"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

// refreshTokenTTL is how long a refresh token stays usable. Tokens are
// rotated on every refresh.
const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	// Register creates a client or expert account with its role profile.
	// Admin accounts are seeded at startup, never self-registered.
	Register(req dto.RegisterRequest) (*dto.AuthResponse, error)

	Login(req dto.LoginRequest) (*dto.AuthResponse, error)

	// Refresh exchanges a valid refresh token for a new token pair and
	// invalidates the old one.
	Refresh(req dto.RefreshRequest) (*dto.AuthResponse, error)

	Logout(userID string) error
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	language := req.Language
	if language == "" {
		language = "fr"
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		Name:         req.Name,
		FirstName:    req.FirstName,
		Phone:        req.Phone,
		Language:     language,
		IsActive:     true,
	}

	switch user.Role {
	case models.UserRoleClient:
		user.ClientProfile = &models.ClientProfile{
			MREStatus:          req.MREStatus,
			CountryOfResidence: req.CountryOfResidence,
		}
	case models.UserRoleExpert:
		user.ExpertProfile = &models.ExpertProfile{
			Specialty:       req.Specialty,
			YearsExperience: req.YearsExperience,
		}
	default:
		return nil, apperrors.NewBadRequestError("Role must be client or expert")
	}

	if err := s.userRepo.Create(user); err != nil {
		if err == repositories.ErrUserAlreadyExists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return s.issueTokens(user)
}

func (s *authService) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastActive(user.ID); err != nil {
		logger.Warn("last active update failed", "user_id", user.ID, "error", err)
	}

	return s.issueTokens(user)
}

func (s *authService) Refresh(req dto.RefreshRequest) (*dto.AuthResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		if err := s.userRepo.DeleteRefreshToken(stored.Token); err != nil {
			logger.Warn("expired refresh token cleanup failed", "error", err)
		}
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.DeleteRefreshToken(stored.Token); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.issueTokens(user)
}

func (s *authService) Logout(userID string) error {
	if err := s.userRepo.DeleteUserRefreshTokens(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		User:         buildUserResponse(user),
	}, nil
}

func buildUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		FirstName: u.FirstName,
		Role:      u.Role,
		Phone:     u.Phone,
		Language:  u.Language,
		IsActive:  u.IsActive,
	}
}

package services

import (
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type UserService interface {
	GetProfile(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)

	// ListExperts returns active experts for the client-facing picker.
	ListExperts(limit, offset int) ([]dto.UserResponse, error)

	// SetActive enables or disables an account. Admin only. A disabled
	// user cannot log in and cannot receive new messages.
	SetActive(actorID, userID string, active bool) error

	ListByRole(actorID string, role models.UserRole, limit, offset int) ([]dto.UserResponse, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	response := buildUserResponse(user)
	return &response, nil
}

func (s *userService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Language != "" {
		user.Language = req.Language
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	response := buildUserResponse(user)
	return &response, nil
}

func (s *userService) ListExperts(limit, offset int) ([]dto.UserResponse, error) {
	experts, err := s.userRepo.FindByRole(models.UserRoleExpert, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.UserResponse, 0, len(experts))
	for i := range experts {
		if !experts[i].IsActive {
			continue
		}
		responses = append(responses, buildUserResponse(&experts[i]))
	}
	return responses, nil
}

func (s *userService) SetActive(actorID, userID string, active bool) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	if actorID == userID {
		return apperrors.ErrInvalidOperation("user", "Cannot change your own account state")
	}

	if err := s.userRepo.SetActive(userID, active); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *userService) ListByRole(actorID string, role models.UserRole, limit, offset int) ([]dto.UserResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrInsufficientPermissions
	}

	users, err := s.userRepo.FindByRole(role, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, buildUserResponse(&users[i]))
	}
	return responses, nil
}

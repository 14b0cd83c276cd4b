package dto

import "servicesbladi_backend/internal/models"

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Name            string `json:"name" validate:"required"`
	FirstName       string `json:"first_name" validate:"required"`
	Phone           string `json:"phone"`
	Language        string `json:"language" validate:"omitempty,oneof=fr ar en"`
	Role            string `json:"role" validate:"required,oneof=client expert"`

	// Client fields
	MREStatus          bool   `json:"mre_status"`
	CountryOfResidence string `json:"country_of_residence"`

	// Expert fields
	Specialty       string `json:"specialty"`
	YearsExperience int    `json:"years_experience"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	FirstName string          `json:"first_name"`
	Role      models.UserRole `json:"role"`
	Phone     string          `json:"phone,omitempty"`
	Language  string          `json:"language"`
	IsActive  bool            `json:"is_active"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty"`
	FirstName string `json:"first_name" validate:"omitempty"`
	Phone     string `json:"phone"`
	Language  string `json:"language" validate:"omitempty,oneof=fr ar en"`
}

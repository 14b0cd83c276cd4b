package services

import (
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/pkg/apperrors"
)

// CatalogService manages the service catalog requests are filed
// against. Reads are public, writes are admin only.
type CatalogService interface {
	ListActive(category string) ([]models.Service, error)
	Get(serviceID string) (*models.Service, error)
	Create(actorID string, service *models.Service) error
	Update(actorID string, service *models.Service) error
	SetActive(actorID, serviceID string, active bool) error
}

type catalogService struct {
	serviceRepo repositories.ServiceRepository
	userRepo    repositories.UserRepository
}

func NewCatalogService(serviceRepo repositories.ServiceRepository, userRepo repositories.UserRepository) CatalogService {
	return &catalogService{serviceRepo: serviceRepo, userRepo: userRepo}
}

func (s *catalogService) ListActive(category string) ([]models.Service, error) {
	services, err := s.serviceRepo.FindActive(category)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return services, nil
}

func (s *catalogService) Get(serviceID string) (*models.Service, error) {
	service, err := s.serviceRepo.FindByID(serviceID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return service, nil
}

func (s *catalogService) Create(actorID string, service *models.Service) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}
	if err := s.serviceRepo.Create(service); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *catalogService) Update(actorID string, service *models.Service) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}
	if _, err := s.serviceRepo.FindByID(service.ID); err != nil {
		return apperrors.ErrNotFound(err)
	}
	if err := s.serviceRepo.Update(service); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *catalogService) SetActive(actorID, serviceID string, active bool) error {
	if err := s.requireAdmin(actorID); err != nil {
		return err
	}
	if err := s.serviceRepo.SetActive(serviceID, active); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *catalogService) requireAdmin(actorID string) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

package repositories

import (
	"errors"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

var ErrServiceNotFound = errors.New("service not found")

type ServiceRepository interface {
	Create(service *models.Service) error
	FindByID(id string) (*models.Service, error)
	FindActive(category string) ([]models.Service, error)
	Update(service *models.Service) error
	SetActive(id string, active bool) error
}

type serviceRepositoryImpl struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepositoryImpl{db: db}
}

func (r *serviceRepositoryImpl) Create(service *models.Service) error {
	return r.db.Create(service).Error
}

func (r *serviceRepositoryImpl) FindByID(id string) (*models.Service, error) {
	var service models.Service
	err := r.db.First(&service, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepositoryImpl) FindActive(category string) ([]models.Service, error) {
	query := r.db.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var services []models.Service
	err := query.Order("category, title").Find(&services).Error
	return services, err
}

func (r *serviceRepositoryImpl) Update(service *models.Service) error {
	return r.db.Save(service).Error
}

func (r *serviceRepositoryImpl) SetActive(id string, active bool) error {
	result := r.db.Model(&models.Service{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

var ErrRequestNotFound = errors.New("service request not found")

type RequestRepository interface {
	Create(request *models.ServiceRequest) error
	FindByID(id string) (*models.ServiceRequest, error)
	FindByClient(clientID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	FindByExpert(expertID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	FindUnassigned(criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	FindAll(criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	UpdateDetails(id string, title, description string, priority models.RequestPriority, desiredDate *time.Time) error

	// UpdateStatusCAS flips the status only if the row still carries the
	// status the caller observed. Returns false when the row was changed
	// concurrently or already moved on.
	UpdateStatusCAS(id string, from, to models.RequestStatus) (bool, error)

	// AssignExpertCAS fills the expert slot only while it is empty.
	AssignExpertCAS(id, expertID string, status models.RequestStatus) (bool, error)

	// ReassignExpert replaces the assigned expert unconditionally
	// (admin-only path).
	ReassignExpert(id, expertID string) error

	Delete(id string) error
}

type RequestCriteria struct {
	Status   models.RequestStatus
	Search   string
	Page     int
	PageSize int
}

type requestRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepositoryImpl{db: db}
}

func (r *requestRepositoryImpl) Create(request *models.ServiceRequest) error {
	return r.db.Create(request).Error
}

func (r *requestRepositoryImpl) FindByID(id string) (*models.ServiceRequest, error) {
	var request models.ServiceRequest
	err := r.db.
		Preload("Client").
		Preload("Expert").
		Preload("Service").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepositoryImpl) FindByClient(clientID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	return r.list(r.db.Where("client_id = ?", clientID), criteria)
}

func (r *requestRepositoryImpl) FindByExpert(expertID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	return r.list(r.db.Where("expert_id = ?", expertID), criteria)
}

func (r *requestRepositoryImpl) FindUnassigned(criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	return r.list(r.db.Where("expert_id IS NULL AND status = ?", models.RequestStatusNew), criteria)
}

func (r *requestRepositoryImpl) FindAll(criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	return r.list(r.db, criteria)
}

func (r *requestRepositoryImpl) list(query *gorm.DB, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	query = query.Model(&models.ServiceRequest{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Search != "" {
		like := "%" + criteria.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if criteria.Page > 0 && criteria.PageSize > 0 {
		query = query.Offset((criteria.Page - 1) * criteria.PageSize).Limit(criteria.PageSize)
	}

	var requests []models.ServiceRequest
	err := query.
		Preload("Client").
		Preload("Expert").
		Preload("Service").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *requestRepositoryImpl) UpdateDetails(id string, title, description string, priority models.RequestPriority, desiredDate *time.Time) error {
	updates := map[string]interface{}{
		"title":       title,
		"description": description,
		"priority":    priority,
	}
	if desiredDate != nil {
		updates["desired_date"] = desiredDate
	}

	result := r.db.Model(&models.ServiceRequest{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *requestRepositoryImpl) UpdateStatusCAS(id string, from, to models.RequestStatus) (bool, error) {
	result := r.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *requestRepositoryImpl) AssignExpertCAS(id, expertID string, status models.RequestStatus) (bool, error) {
	result := r.db.Model(&models.ServiceRequest{}).
		Where("id = ? AND expert_id IS NULL", id).
		Updates(map[string]interface{}{
			"expert_id": expertID,
			"status":    status,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *requestRepositoryImpl) ReassignExpert(id, expertID string) error {
	result := r.db.Model(&models.ServiceRequest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"expert_id": expertID,
			"status":    models.RequestStatusInProgress,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *requestRepositoryImpl) Delete(id string) error {
	result := r.db.Select("Appointments", "Documents").Delete(&models.ServiceRequest{BaseModel: models.BaseModel{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

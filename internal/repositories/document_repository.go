package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id string) (*models.Document, error)
	FindByRequest(requestID string) ([]models.Document, error)
	FindByUploader(userID string) ([]models.Document, error)
	FindPending() ([]models.Document, error)

	// SetReviewStatus records the admin verdict; only pending documents
	// are eligible.
	SetReviewStatus(id string, status models.DocumentStatus, reviewerID, reason string) (bool, error)

	Delete(id string) error
}

type documentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepositoryImpl{db: db}
}

func (r *documentRepositoryImpl) Create(document *models.Document) error {
	return r.db.Create(document).Error
}

func (r *documentRepositoryImpl) FindByID(id string) (*models.Document, error) {
	var document models.Document
	err := r.db.Preload("UploadedBy").First(&document, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &document, nil
}

func (r *documentRepositoryImpl) FindByRequest(requestID string) ([]models.Document, error) {
	var documents []models.Document
	err := r.db.
		Where("service_request_id = ?", requestID).
		Preload("UploadedBy").
		Order("created_at DESC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepositoryImpl) FindByUploader(userID string) ([]models.Document, error) {
	var documents []models.Document
	err := r.db.
		Where("uploaded_by_id = ?", userID).
		Order("created_at DESC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepositoryImpl) FindPending() ([]models.Document, error) {
	var documents []models.Document
	err := r.db.
		Where("status = ?", models.DocumentStatusPending).
		Preload("UploadedBy").
		Order("created_at ASC").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepositoryImpl) SetReviewStatus(id string, status models.DocumentStatus, reviewerID, reason string) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.Document{}).
		Where("id = ? AND status = ?", id, models.DocumentStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"verified_by_id":   reviewerID,
			"verified_at":      now,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *documentRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepository interface {
	Create(appointment *models.Appointment) error
	FindByID(id string) (*models.Appointment, error)
	FindByClient(clientID string, status models.AppointmentStatus) ([]models.Appointment, error)
	FindByExpert(expertID string, status models.AppointmentStatus) ([]models.Appointment, error)
	FindByRequest(requestID string) ([]models.Appointment, error)

	// UpdateStatusCAS flips the status only from one of the expected
	// source statuses, serializing concurrent edits.
	UpdateStatusCAS(id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error)

	Reschedule(id string, dateTime time.Time, duration int) error
	UpdateNotes(id string, notes string) error
	Delete(id string) error
}

type appointmentRepositoryImpl struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepositoryImpl{db: db}
}

func (r *appointmentRepositoryImpl) Create(appointment *models.Appointment) error {
	return r.db.Create(appointment).Error
}

func (r *appointmentRepositoryImpl) FindByID(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.
		Preload("Client").
		Preload("Expert").
		Preload("Service").
		Preload("ServiceRequest").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepositoryImpl) FindByClient(clientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	return r.list(r.db.Where("client_id = ?", clientID), status)
}

func (r *appointmentRepositoryImpl) FindByExpert(expertID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	return r.list(r.db.Where("expert_id = ?", expertID), status)
}

func (r *appointmentRepositoryImpl) FindByRequest(requestID string) ([]models.Appointment, error) {
	return r.list(r.db.Where("service_request_id = ?", requestID), "")
}

func (r *appointmentRepositoryImpl) list(query *gorm.DB, status models.AppointmentStatus) ([]models.Appointment, error) {
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	err := query.
		Preload("Client").
		Preload("Expert").
		Preload("Service").
		Order("date_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepositoryImpl) UpdateStatusCAS(id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error) {
	result := r.db.Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *appointmentRepositoryImpl) Reschedule(id string, dateTime time.Time, duration int) error {
	updates := map[string]interface{}{"date_time": dateTime}
	if duration > 0 {
		updates["duration"] = duration
	}

	result := r.db.Model(&models.Appointment{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepositoryImpl) UpdateNotes(id string, notes string) error {
	result := r.db.Model(&models.Appointment{}).Where("id = ?", id).Update("notes", notes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *appointmentRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

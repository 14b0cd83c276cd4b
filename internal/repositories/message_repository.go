package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"servicesbladi_backend/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(message *models.Message) error
	FindByID(id string) (*models.Message, error)

	// FindConversation returns both directions of the (a, b) pair in
	// sent_at ascending order, optionally limited to the newest N.
	FindConversation(a, b string, limit int) ([]models.Message, error)

	FindByRequest(requestID string) ([]models.Message, error)

	// FindUserMessages returns every message the user sent or received,
	// newest first, for conversation summaries.
	FindUserMessages(userID string) ([]models.Message, error)

	// MarkConversationRead flips every unread message addressed to
	// recipientID from otherID in one batch. Re-running it is a no-op.
	MarkConversationRead(recipientID, otherID string) (int64, error)

	CountUnread(userID string) (int64, error)

	// HasMessageFrom reports whether senderID has already written into
	// the request-scoped conversation.
	HasMessageFrom(requestID, senderID string) (bool, error)
}

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *messageRepositoryImpl) FindByID(id string) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").Preload("Recipient").First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepositoryImpl) FindConversation(a, b string, limit int) ([]models.Message, error) {
	query := r.db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Preload("Sender").
		Order("sent_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) FindByRequest(requestID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("service_request_id = ?", requestID).
		Preload("Sender").
		Order("sent_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) FindUserMessages(userID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Preload("Sender").
		Preload("Recipient").
		Order("sent_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) MarkConversationRead(recipientID, otherID string) (int64, error) {
	now := time.Now()
	result := r.db.Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", recipientID, otherID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *messageRepositoryImpl) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *messageRepositoryImpl) HasMessageFrom(requestID, senderID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("service_request_id = ? AND sender_id = ?", requestID, senderID).
		Count(&count).Error
	return count > 0, err
}

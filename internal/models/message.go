package models

import "time"

// Message is one entry of an append-only conversation between two
// actors, optionally scoped to a service request. Messages are never
// edited; only IsRead/ReadAt flip when the recipient opens the
// conversation.
type Message struct {
	ID               string  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SenderID         string  `gorm:"type:uuid;not null;index:idx_messages_pair"`
	RecipientID      string  `gorm:"type:uuid;not null;index:idx_messages_pair"`
	ServiceRequestID *string `gorm:"type:uuid;index"`
	Content          string  `gorm:"not null"`
	SentAt           time.Time `gorm:"autoCreateTime;index"`
	IsRead           bool      `gorm:"default:false"`
	ReadAt           *time.Time

	Sender    *User `gorm:"foreignKey:SenderID"`
	Recipient *User `gorm:"foreignKey:RecipientID"`
}

// ConversationKey identifies the unordered pair of a two-party
// conversation: (min(a,b), max(a,b)), symmetric for both sides.
func ConversationKey(a, b string) string {
	if a < b {
		return a + "_" + b
	}
	return b + "_" + a
}

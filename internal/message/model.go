// File: internal/message/model.go
package message

import (
	"time"

	"barter_backend/internal/common"

	"github.com/google/uuid"
)

// Message is one direct message between two users.
type Message struct {
	common.BaseModel
	SenderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject     string    `gorm:"type:varchar(255);not null;default:''"`
	Body        string    `gorm:"type:text;not null"`
	IsRead      bool      `gorm:"not null;default:false;index"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest carries a new message to a recipient.
type SendMessageRequest struct {
	Subject string `json:"subject,omitempty" binding:"omitempty,max=255"`
	Body    string `json:"body" binding:"required,min=1,max=5000"`
}

// MessageResponse is the API representation of a message.
type MessageResponse struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConversationSummary is one row in the conversation list: the other user,
// the latest message and how many of theirs are still unread.
type ConversationSummary struct {
	UserID      uuid.UUID        `json:"user_id"`
	Username    string           `json:"username"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
}

// ToMessageResponse converts a Message to its API representation.
func ToMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Subject:     m.Subject,
		Body:        m.Body,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}

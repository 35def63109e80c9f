// File: internal/notification/model.go
package notification

import (
	"time"

	"barter_backend/internal/common"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeTradeProposed  = "trade_proposed"
	TypeTradeAccepted  = "trade_accepted"
	TypeTradeRejected  = "trade_rejected"
	TypeTradeCompleted = "trade_completed"
	TypeNewMessage     = "new_message"
	TypeNewReview      = "new_review"
)

// Notification represents an in-app notification for a user.
type Notification struct {
	common.BaseModel
	RecipientID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID        *uuid.UUID `gorm:"type:uuid"` // User whose action produced the notification
	Type           string     `gorm:"type:varchar(50);not null"`
	Title          string     `gorm:"type:varchar(255);not null"`
	Message        string     `gorm:"type:text;not null"`
	RelatedTradeID *uuid.UUID `gorm:"type:uuid;index"`
	IsRead         bool       `gorm:"not null;default:false;index"`
}

// TableName specifies the table name for the Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// NotificationResponse is the API representation of a notification.
type NotificationResponse struct {
	ID             uuid.UUID  `json:"id"`
	RecipientID    uuid.UUID  `json:"recipient_id"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	RelatedTradeID *uuid.UUID `json:"related_trade_id,omitempty"`
	IsRead         bool       `json:"is_read"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a Notification to its API representation.
func ToNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		RecipientID:    n.RecipientID,
		ActorID:        n.ActorID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RelatedTradeID: n.RelatedTradeID,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

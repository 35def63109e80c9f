// File: internal/message/repository.go
package message

import (
	"context"
	"fmt"

	"barter_backend/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for messages.
type Repository interface {
	Create(ctx context.Context, m *Message, n *notification.Notification) error
	ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error)
	MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) (int64, error)
	ConversationPartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	LastMessageBetween(ctx context.Context, userID, otherID uuid.UUID) (*Message, error)
	CountUnreadFrom(ctx context.Context, recipientID, senderID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM message repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts the message and, when given, the recipient's notification
// in one transaction.
func (r *gormRepository) Create(ctx context.Context, m *Message, n *notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("creating message: %w", err)
		}
		if n != nil {
			if err := notification.CreateInTx(tx, n); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	return msgs, nil
}

func (r *gormRepository) MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("marking conversation read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ConversationPartners returns the distinct users this user has exchanged
// messages with.
func (r *gormRepository) ConversationPartners(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var partners []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT partner_id FROM (
			SELECT recipient_id AS partner_id FROM messages WHERE sender_id = ?
			UNION
			SELECT sender_id AS partner_id FROM messages WHERE recipient_id = ?
		) partners`, userID, userID).
		Scan(&partners).Error
	if err != nil {
		return nil, fmt.Errorf("listing conversation partners: %w", err)
	}
	return partners, nil
}

func (r *gormRepository) LastMessageBetween(ctx context.Context, userID, otherID uuid.UUID) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("finding last message: %w", err)
	}
	return &m, nil
}

func (r *gormRepository) CountUnreadFrom(ctx context.Context, recipientID, senderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread messages from sender: %w", err)
	}
	return count, nil
}

func (r *gormRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}

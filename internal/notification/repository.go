// File: internal/notification/repository.go
package notification

import (
	"context"
	"fmt"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for notifications.
type Repository interface {
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateInTx inserts a notification inside an existing transaction. It is
// used by other domains that record side effects atomically with their own
// state changes.
func CreateInTx(tx *gorm.DB, n *Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *gormRepository) ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, pageSize int) ([]Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting notifications: %w", err)
	}

	var items []Notification
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing notifications: %w", err)
	}
	return items, total, nil
}

func (r *gormRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *gormRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("marking notification %s read: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

func (r *gormRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&Notification{})
	if result.Error != nil {
		return fmt.Errorf("deleting notification %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

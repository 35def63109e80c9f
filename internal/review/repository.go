// File: internal/review/repository.go
package review

import (
	"context"
	"errors"
	"fmt"

	"barter_backend/internal/common"
	"barter_backend/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review, n *notification.Notification) error
	ExistsForTrade(ctx context.Context, reviewerID, reviewedUserID, tradeID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]Review, error)
	RatingSummaryForUser(ctx context.Context, reviewedUserID uuid.UUID) (int64, float64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM review repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts the review and the reviewed user's notification
// atomically. The unique index backs up the duplicate check under
// concurrency.
func (r *gormRepository) Create(ctx context.Context, rev *Review, n *notification.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rev).Error; err != nil {
			return fmt.Errorf("creating review: %w", err)
		}
		if n != nil {
			if err := notification.CreateInTx(tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("You have already reviewed this user for this trade.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) ExistsForTrade(ctx context.Context, reviewerID, reviewedUserID, tradeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Review{}).
		Where("reviewer_id = ? AND reviewed_user_id = ? AND trade_id = ?",
			reviewerID, reviewedUserID, tradeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking existing review: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]Review, error) {
	var reviews []Review
	err := r.db.WithContext(ctx).
		Where("reviewed_user_id = ?", reviewedUserID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("listing reviews for user %s: %w", reviewedUserID, err)
	}
	return reviews, nil
}

// RatingSummaryForUser returns the review count and average rating, zero
// when the user has no reviews yet.
func (r *gormRepository) RatingSummaryForUser(ctx context.Context, reviewedUserID uuid.UUID) (int64, float64, error) {
	var result struct {
		Count   int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("reviewed_user_id = ?", reviewedUserID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, fmt.Errorf("aggregating reviews for user %s: %w", reviewedUserID, err)
	}
	return result.Count, result.Average, nil
}

// File: internal/trade/repository.go
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows a trade listing.
type ListFilter struct {
	// Direction is "sent", "received" or "" for both.
	Direction string
	Status    string
	Page      int
	PageSize  int
}

// TransitionParams describes one atomic status change: the expected current
// status, the target status, optional offer side effects and the
// notification recorded with it.
type TransitionParams struct {
	TradeID        uuid.UUID
	ExpectedStatus string
	NewStatus      string

	// SetInitiatorOffer pins the offer chosen at acceptance.
	// ClearInitiatorOffer empties it for a purchase acceptance.
	SetInitiatorOffer   *uuid.UUID
	ClearInitiatorOffer bool

	// DeactivateOfferIDs are marked inactive in the same transaction.
	DeactivateOfferIDs []uuid.UUID

	Notification *notification.Notification
}

// Repository defines persistence operations for trades.
type Repository interface {
	Create(ctx context.Context, t *Trade, n *notification.Notification) error
	FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Trade, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Trade, int64, error)
	Transition(ctx context.Context, params TransitionParams) (*Trade, error)
	CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]Trade, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM trade repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create inserts the trade and the proposal notification atomically.
func (r *gormRepository) Create(ctx context.Context, t *Trade, n *notification.Notification) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("creating trade: %w", err)
		}
		if n != nil {
			n.RelatedTradeID = &t.ID
			if err := notification.CreateInTx(tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Trade, error) {
	var t Trade
	query := r.db.WithContext(ctx)
	if preload {
		query = query.
			Preload("Initiator").Preload("Responder").
			Preload("InitiatorOffer").Preload("InitiatorOffer.Category").
			Preload("TargetOffer").Preload("TargetOffer.Category")
	}
	err := query.First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Trade not found.")
		}
		return nil, fmt.Errorf("finding trade by id %s: %w", id, err)
	}
	return &t, nil
}

func (r *gormRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Trade, int64, error) {
	query := r.db.WithContext(ctx).Model(&Trade{})

	switch filter.Direction {
	case "sent":
		query = query.Where("initiator_id = ?", userID)
	case "received":
		query = query.Where("responder_id = ?", userID)
	default:
		query = query.Where("initiator_id = ? OR responder_id = ?", userID, userID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting trades: %w", err)
	}

	var trades []Trade
	err := query.
		Preload("Initiator").Preload("Responder").
		Preload("InitiatorOffer").Preload("TargetOffer").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize).
		Find(&trades).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing trades: %w", err)
	}
	return trades, total, nil
}

// Transition applies a status change under a row lock. The trade row is
// locked FOR UPDATE, the status re-checked against ExpectedStatus, and the
// status write, offer deactivations and notification all commit together.
// A concurrent caller that loses the race gets a conflict.
func (r *gormRepository) Transition(ctx context.Context, params TransitionParams) (*Trade, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked Trade
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", params.TradeID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Trade not found.")
			}
			return fmt.Errorf("locking trade %s: %w", params.TradeID, err)
		}

		if locked.Status != params.ExpectedStatus {
			return common.ErrConflict.WithDetails(
				"The trade was modified concurrently; it is now '" + locked.Status + "'.")
		}

		updates := map[string]interface{}{"status": params.NewStatus}
		if params.SetInitiatorOffer != nil {
			updates["initiator_offer_id"] = *params.SetInitiatorOffer
		} else if params.ClearInitiatorOffer {
			updates["initiator_offer_id"] = nil
		}
		if err := tx.Model(&Trade{}).Where("id = ?", params.TradeID).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating trade %s: %w", params.TradeID, err)
		}

		if err := offer.DeactivateInTx(tx, params.DeactivateOfferIDs...); err != nil {
			return err
		}

		if params.Notification != nil {
			params.Notification.RelatedTradeID = &params.TradeID
			if err := notification.CreateInTx(tx, params.Notification); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, params.TradeID, true)
}

func (r *gormRepository) CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Trade{}).
		Where("(initiator_id = ? OR responder_id = ?) AND status = ?", userID, userID, StatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting completed trades for user %s: %w", userID, err)
	}
	return count, nil
}

func (r *gormRepository) FindStalePending(ctx context.Context, olderThan time.Time) ([]Trade, error) {
	var trades []Trade
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, olderThan).
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("finding stale pending trades: %w", err)
	}
	return trades, nil
}

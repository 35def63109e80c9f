// File: internal/offer/repository.go
package offer

import (
	"context"
	"errors"
	"fmt"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for offers.
type Repository interface {
	Create(ctx context.Context, o *Offer) error
	FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Offer, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query SearchQuery) ([]Offer, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]Offer, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (total int64, active int64, err error)
	CountTradesReferencing(ctx context.Context, offerID uuid.UUID) (int64, error)
	TradeCountsForOffer(ctx context.Context, offerID uuid.UUID) (total int64, completed int64, err error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Offer, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM offer repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, o *Offer) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("creating offer: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Offer, error) {
	var o Offer
	query := r.db.WithContext(ctx)
	if preload {
		query = query.Preload("Owner").Preload("Category")
	}
	err := query.First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Offer not found.")
		}
		return nil, fmt.Errorf("finding offer by id %s: %w", id, err)
	}
	return &o, nil
}

func (r *gormRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Offer{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating offer fields for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Offer not found.")
	}
	return nil
}

// Delete removes an offer unless a pending or accepted trade still
// references it.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	referencing, err := r.CountTradesReferencing(ctx, id)
	if err != nil {
		return err
	}
	if referencing > 0 {
		return common.ErrConflict.WithDetails("This offer is part of an ongoing trade and cannot be deleted.")
	}

	result := r.db.WithContext(ctx).Delete(&Offer{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting offer %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Offer not found.")
	}
	return nil
}

func (r *gormRepository) Search(ctx context.Context, query SearchQuery) ([]Offer, int64, error) {
	dbQuery := r.db.WithContext(ctx).Model(&Offer{}).
		Where("offers.is_active = ?", true)

	if query.Term != "" {
		like := "%" + query.Term + "%"
		dbQuery = dbQuery.Where("offers.title ILIKE ? OR offers.description ILIKE ?", like, like)
	}
	if query.CategorySlug != "" {
		dbQuery = dbQuery.
			Joins("JOIN categories ON categories.id = offers.category_id").
			Where("categories.slug = ?", query.CategorySlug)
	}
	if query.City != "" {
		dbQuery = dbQuery.Where("offers.city ILIKE ?", query.City)
	}
	if query.OwnerID != nil {
		dbQuery = dbQuery.Where("offers.owner_id = ?", *query.OwnerID)
	}

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting offers: %w", err)
	}

	var offers []Offer
	err := dbQuery.Preload("Owner").Preload("Category").
		Order("offers.created_at DESC").
		Offset((query.Page - 1) * query.PageSize).Limit(query.PageSize).
		Find(&offers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("searching offers: %w", err)
	}
	return offers, total, nil
}

func (r *gormRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]Offer, error) {
	query := r.db.WithContext(ctx).Preload("Category").
		Where("owner_id = ?", ownerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var offers []Offer
	if err := query.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("listing offers for owner %s: %w", ownerID, err)
	}
	return offers, nil
}

// DeactivateInTx marks offers inactive inside an existing transaction. Used
// when completing a trade so the state change and the deactivation commit
// together.
func DeactivateInTx(tx *gorm.DB, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Model(&Offer{}).
		Where("id IN ?", ids).
		UpdateColumn("is_active", false).Error
	if err != nil {
		return fmt.Errorf("deactivating offers %v: %w", ids, err)
	}
	return nil
}

func (r *gormRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&Offer{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
	if err != nil {
		return fmt.Errorf("incrementing views for offer %s: %w", id, err)
	}
	return nil
}

func (r *gormRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	var total, active int64
	err := r.db.WithContext(ctx).Model(&Offer{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting offers for owner %s: %w", ownerID, err)
	}
	err = r.db.WithContext(ctx).Model(&Offer{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&active).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting active offers for owner %s: %w", ownerID, err)
	}
	return total, active, nil
}

// CountTradesReferencing counts pending or accepted trades that involve the
// offer on either side. Queried by table name to keep the trade domain out
// of this package's imports.
func (r *gormRepository) CountTradesReferencing(ctx context.Context, offerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("trades").
		Where("(initiator_offer_id = ? OR target_offer_id = ?) AND status IN ?",
			offerID, offerID, []string{"pending", "accepted"}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting trades referencing offer %s: %w", offerID, err)
	}
	return count, nil
}

// TradeCountsForOffer counts all trades touching the offer and how many of
// them completed. Feeds the owner-facing offer stats endpoint.
func (r *gormRepository) TradeCountsForOffer(ctx context.Context, offerID uuid.UUID) (int64, int64, error) {
	var total, completed int64
	err := r.db.WithContext(ctx).Table("trades").
		Where("initiator_offer_id = ? OR target_offer_id = ?", offerID, offerID).
		Count(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting trades for offer %s: %w", offerID, err)
	}
	err = r.db.WithContext(ctx).Table("trades").
		Where("(initiator_offer_id = ? OR target_offer_id = ?) AND status = ?",
			offerID, offerID, "completed").
		Count(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting completed trades for offer %s: %w", offerID, err)
	}
	return total, completed, nil
}

// FindAllForSync pages through offers for bulk indexing.
func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Offer, error) {
	var offers []Offer
	err := r.db.WithContext(ctx).Preload("Owner").Preload("Category").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("fetching offers for sync: %w", err)
	}
	return offers, nil
}

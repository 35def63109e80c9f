// File: internal/category/repository.go
package category

import (
	"context"
	"errors"
	"fmt"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, cat *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context, includeInactive bool) ([]Category, error)
	Update(ctx context.Context, cat *Category) error
	CountActiveOffers(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM category repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, cat *Category) error {
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("A category with this name already exists.")
		}
		return fmt.Errorf("creating category: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	var cat Category
	err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, fmt.Errorf("finding category by id %s: %w", id, err)
	}
	return &cat, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Category, error) {
	var cat Category
	err := r.db.WithContext(ctx).First(&cat, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Category not found.")
		}
		return nil, fmt.Errorf("finding category by slug %q: %w", slug, err)
	}
	return &cat, nil
}

func (r *gormRepository) List(ctx context.Context, includeInactive bool) ([]Category, error) {
	var cats []Category
	query := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

func (r *gormRepository) Update(ctx context.Context, cat *Category) error {
	if err := r.db.WithContext(ctx).Save(cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict.WithDetails("A category with this name already exists.")
		}
		return fmt.Errorf("updating category %s: %w", cat.ID, err)
	}
	return nil
}

// CountActiveOffers counts active offers in a category without importing
// the offer package.
func (r *gormRepository) CountActiveOffers(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("offers").
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting offers for category %s: %w", categoryID, err)
	}
	return count, nil
}

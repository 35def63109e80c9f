// File: internal/category/model.go
package category

import (
	"time"

	"barter_backend/internal/common"

	"github.com/google/uuid"
)

// Category represents an offer category.
type Category struct {
	common.BaseModel
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug        string  `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description *string `gorm:"type:text"`
	Icon        *string `gorm:"type:varchar(100)"` // Client-side icon identifier
	IsActive    bool    `gorm:"not null;default:true"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// CreateCategoryRequest defines the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Icon        *string `json:"icon,omitempty" binding:"omitempty,max=100"`
}

// UpdateCategoryRequest defines the payload for updating a category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	Icon        *string `json:"icon,omitempty" binding:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	IsActive    bool      `json:"is_active"`
	OffersCount int64     `json:"offers_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a Category to its API representation.
func ToCategoryResponse(cat *Category, offersCount int64) CategoryResponse {
	return CategoryResponse{
		ID:          cat.ID,
		Name:        cat.Name,
		Slug:        cat.Slug,
		Description: cat.Description,
		Icon:        cat.Icon,
		IsActive:    cat.IsActive,
		OffersCount: offersCount,
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
}

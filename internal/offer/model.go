// File: internal/offer/model.go
package offer

import (
	"time"

	"barter_backend/internal/category"
	"barter_backend/internal/common"
	"barter_backend/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.StringArray
)

// Offer represents an item or service posted for barter.
type Offer struct {
	common.BaseModel
	OwnerID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Owner       *user.User        `gorm:"foreignKey:OwnerID"`
	CategoryID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Category    category.Category `gorm:"foreignKey:CategoryID"`
	Title       string            `gorm:"type:varchar(200);not null"`
	Description string            `gorm:"type:text;not null"`
	PriceRange  *string           `gorm:"type:varchar(100)"` // Free-form estimate, e.g. "50-100"
	Location    *string           `gorm:"type:varchar(255)"`
	City        *string           `gorm:"type:varchar(100);index"`
	ImagePath   *string           `gorm:"type:text"`
	Tags        pq.StringArray    `gorm:"type:text[]"`
	IsActive    bool              `gorm:"not null;default:true;index"`
	ViewsCount  int64             `gorm:"not null;default:0"`
}

// TableName specifies the table name for the Offer model.
func (Offer) TableName() string {
	return "offers"
}

// --- DTOs ---

// CreateOfferRequest is bound from a multipart form so an image can ride
// along with the fields.
type CreateOfferRequest struct {
	Title       string   `form:"title" binding:"required,min=3,max=200"`
	Description string   `form:"description" binding:"required,min=10,max=5000"`
	CategoryID  string   `form:"category_id" binding:"required,uuid"`
	PriceRange  *string  `form:"price_range" binding:"omitempty,max=100"`
	Location    *string  `form:"location" binding:"omitempty,max=255"`
	City        *string  `form:"city" binding:"omitempty,max=100"`
	Tags        []string `form:"tags" binding:"omitempty,max=10,dive,min=1,max=50"`
}

// UpdateOfferRequest carries the mutable offer fields.
type UpdateOfferRequest struct {
	Title       *string  `form:"title" binding:"omitempty,min=3,max=200"`
	Description *string  `form:"description" binding:"omitempty,min=10,max=5000"`
	CategoryID  *string  `form:"category_id" binding:"omitempty,uuid"`
	PriceRange  *string  `form:"price_range" binding:"omitempty,max=100"`
	Location    *string  `form:"location" binding:"omitempty,max=255"`
	City        *string  `form:"city" binding:"omitempty,max=100"`
	Tags        []string `form:"tags" binding:"omitempty,max=10,dive,min=1,max=50"`
	IsActive    *bool    `form:"is_active"`
}

// SearchQuery holds the filters accepted by the offer search endpoint.
type SearchQuery struct {
	Term         string `form:"q"`
	CategorySlug string `form:"category"`
	City         string `form:"city"`
	OwnerID      *uuid.UUID
	Page         int `form:"page"`
	PageSize     int `form:"page_size"`
}

// OfferOwnerResponse is the slim owner block embedded in offer responses.
type OfferOwnerResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// OfferResponse is the API representation of an offer.
type OfferResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	CategoryID  uuid.UUID                  `json:"category_id"`
	Category    *category.CategoryResponse `json:"category,omitempty"`
	Owner       *OfferOwnerResponse        `json:"owner,omitempty"`
	PriceRange  *string                    `json:"price_range,omitempty"`
	Location    *string                    `json:"location,omitempty"`
	City        *string                    `json:"city,omitempty"`
	ImageURL    *string                    `json:"image_url,omitempty"`
	Tags        []string                   `json:"tags,omitempty"`
	IsActive    bool                       `json:"is_active"`
	ViewsCount  int64                      `json:"views_count"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// OfferStatsResponse is the owner-facing stats block for a single offer.
type OfferStatsResponse struct {
	OfferID         uuid.UUID `json:"offer_id"`
	Title           string    `json:"title"`
	IsActive        bool      `json:"is_active"`
	ViewsCount      int64     `json:"views_count"`
	TradesCount     int64     `json:"trades_count"`
	CompletedTrades int64     `json:"completed_trades"`
}

// ToOfferResponse converts an Offer to its API representation. imageBaseURL
// is prefixed onto the stored relative image path.
func ToOfferResponse(o *Offer, imageBaseURL string) OfferResponse {
	resp := OfferResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		CategoryID:  o.CategoryID,
		PriceRange:  o.PriceRange,
		Location:    o.Location,
		City:        o.City,
		Tags:        o.Tags,
		IsActive:    o.IsActive,
		ViewsCount:  o.ViewsCount,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.ImagePath != nil && *o.ImagePath != "" {
		url := imageBaseURL + "/" + *o.ImagePath
		resp.ImageURL = &url
	}
	if o.Owner != nil {
		resp.Owner = &OfferOwnerResponse{ID: o.Owner.ID, Username: o.Owner.Username}
	}
	if o.Category.ID != uuid.Nil {
		cat := category.ToCategoryResponse(&o.Category, 0)
		resp.Category = &cat
	}
	return resp
}

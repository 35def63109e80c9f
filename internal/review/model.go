// File: internal/review/model.go
package review

import (
	"time"

	"barter_backend/internal/common"

	"github.com/google/uuid"
)

// Review is a rating one user leaves for another, optionally tied to a
// completed trade. One review per reviewer, reviewed user and trade.
type Review struct {
	common.BaseModel
	ReviewerID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviewer_reviewed_trade"`
	ReviewedUserID  uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviewer_reviewed_trade"`
	TradeID         *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviewer_reviewed_trade"`
	Rating          int        `gorm:"not null"`
	Comment         string     `gorm:"type:text;not null;default:''"`
	IsVerifiedTrade bool       `gorm:"not null;default:false"`
}

// TableName specifies the table name for the Review model.
func (Review) TableName() string {
	return "reviews"
}

// CreateReviewRequest leaves a review for a user.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string  `json:"comment,omitempty" binding:"omitempty,max=2000"`
	TradeID *string `json:"trade_id,omitempty" binding:"omitempty,uuid"`
}

// ReviewResponse is the API representation of a review.
type ReviewResponse struct {
	ID               uuid.UUID  `json:"id"`
	ReviewerID       uuid.UUID  `json:"reviewer_id"`
	ReviewerUsername string     `json:"reviewer_username,omitempty"`
	ReviewedUserID   uuid.UUID  `json:"reviewed_user_id"`
	TradeID          *uuid.UUID `json:"trade_id,omitempty"`
	Rating           int        `json:"rating"`
	Comment          string     `json:"comment,omitempty"`
	IsVerifiedTrade  bool       `json:"is_verified_trade"`
	CreatedAt        time.Time  `json:"created_at"`
}

// UserReviewsResponse bundles a user's reviews with their aggregate rating.
type UserReviewsResponse struct {
	Username      string           `json:"username"`
	AverageRating float64          `json:"average_rating"`
	ReviewsCount  int64            `json:"reviews_count"`
	Reviews       []ReviewResponse `json:"reviews"`
}

// ToReviewResponse converts a Review to its API representation.
func ToReviewResponse(r *Review, reviewerUsername string) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		ReviewerID:       r.ReviewerID,
		ReviewerUsername: reviewerUsername,
		ReviewedUserID:   r.ReviewedUserID,
		TradeID:          r.TradeID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		IsVerifiedTrade:  r.IsVerifiedTrade,
		CreatedAt:        r.CreatedAt,
	}
}

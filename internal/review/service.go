// File: internal/review/service.go
package review

import (
	"context"
	"fmt"

	"barter_backend/internal/common"
	"barter_backend/internal/notification"
	"barter_backend/internal/shared"
	"barter_backend/internal/trade"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the operations the review domain exposes.
type Service interface {
	Create(ctx context.Context, reviewerID uuid.UUID, reviewedUsername string, req CreateReviewRequest) (*ReviewResponse, error)
	ListForUser(ctx context.Context, username string) (*UserReviewsResponse, error)

	// RatingSummaryForUser feeds the public profile statistics.
	RatingSummaryForUser(ctx context.Context, userID uuid.UUID) (int64, float64, error)
}

type service struct {
	repo      Repository
	tradeRepo trade.Repository
	users     shared.Service
	logger    *zap.Logger
}

// NewService creates a new review service.
func NewService(repo Repository, tradeRepo trade.Repository, users shared.Service, logger *zap.Logger) Service {
	return &service{repo: repo, tradeRepo: tradeRepo, users: users, logger: logger.Named("ReviewService")}
}

// Create leaves a review for another user. When a trade is referenced it
// must be completed, the reviewer must be one of its parties and the
// reviewed user the other, and the review is marked verified.
func (s *service) Create(ctx context.Context, reviewerID uuid.UUID, reviewedUsername string, req CreateReviewRequest) (*ReviewResponse, error) {
	reviewed, err := s.users.GetUserByUsername(ctx, reviewedUsername)
	if err != nil {
		return nil, err
	}
	if reviewed.ID == reviewerID {
		return nil, common.ErrForbidden.WithDetails("You cannot review yourself.")
	}

	rev := &Review{
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewed.ID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}

	if req.TradeID != nil {
		tradeID, err := uuid.Parse(*req.TradeID)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails("Invalid trade ID format.")
		}
		t, err := s.tradeRepo.FindByID(ctx, tradeID, false)
		if err != nil {
			return nil, err
		}
		if t.Status != trade.StatusCompleted {
			return nil, common.ErrUnprocessableEntity.WithDetails("Reviews can only reference completed trades.")
		}
		if t.RoleOf(reviewerID) == trade.RoleNone {
			return nil, common.ErrForbidden.WithDetails("You were not a party to this trade.")
		}
		if t.OtherParty(reviewerID) != reviewed.ID {
			return nil, common.ErrUnprocessableEntity.WithDetails("The reviewed user was not your counterparty in this trade.")
		}

		exists, err := s.repo.ExistsForTrade(ctx, reviewerID, reviewed.ID, tradeID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrConflict.WithDetails("You have already reviewed this user for this trade.")
		}

		rev.TradeID = &tradeID
		rev.IsVerifiedTrade = true
	}

	reviewer, err := s.users.GetUserByID(ctx, reviewerID)
	if err != nil {
		return nil, err
	}

	n := &notification.Notification{
		RecipientID:    reviewed.ID,
		ActorID:        &reviewerID,
		Type:           notification.TypeNewReview,
		Title:          "New review",
		Message:        fmt.Sprintf("%s left you a %d-star review.", reviewer.Username, req.Rating),
		RelatedTradeID: rev.TradeID,
	}

	if err := s.repo.Create(ctx, rev, n); err != nil {
		return nil, err
	}
	s.logger.Info("Review created",
		zap.String("reviewerID", reviewerID.String()),
		zap.String("reviewedUserID", reviewed.ID.String()),
		zap.Int("rating", req.Rating))

	resp := ToReviewResponse(rev, reviewer.Username)
	return &resp, nil
}

func (s *service) ListForUser(ctx context.Context, username string) (*UserReviewsResponse, error) {
	reviewed, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListForUser(ctx, reviewed.ID)
	if err != nil {
		return nil, err
	}
	count, avg, err := s.repo.RatingSummaryForUser(ctx, reviewed.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		reviewerUsername := ""
		if reviewer, err := s.users.GetUserByID(ctx, reviews[i].ReviewerID); err == nil {
			reviewerUsername = reviewer.Username
		}
		responses = append(responses, ToReviewResponse(&reviews[i], reviewerUsername))
	}

	return &UserReviewsResponse{
		Username:      reviewed.Username,
		AverageRating: avg,
		ReviewsCount:  count,
		Reviews:       responses,
	}, nil
}

func (s *service) RatingSummaryForUser(ctx context.Context, userID uuid.UUID) (int64, float64, error) {
	return s.repo.RatingSummaryForUser(ctx, userID)
}

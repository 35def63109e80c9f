// File: internal/trade/service.go
package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/config"
	"barter_backend/internal/notification"
	"barter_backend/internal/offer"
	"barter_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// proposalBoilerplate opens every trade request so responders always get
// pointed at the initiator's listings.
const proposalBoilerplate = "Hello, I am interested in your offer. Please take a look at my listings for a possible trade."

// Service defines the operations the trade domain exposes.
type Service interface {
	Propose(ctx context.Context, initiatorID uuid.UUID, req ProposeTradeRequest) (*TradeResponse, error)
	GetByID(ctx context.Context, id, actorID uuid.UUID) (*TradeDetailResponse, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]TradeResponse, *common.Pagination, error)
	AcceptWithOffer(ctx context.Context, tradeID, actorID, offerID uuid.UUID) (*TradeResponse, error)
	AcceptAsPurchase(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error)
	Reject(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error)
	Complete(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error)

	// CountCompletedForUser feeds the public profile statistics.
	CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// ExpireStalePending rejects pending trades older than the configured
	// age. Run from the scheduler.
	ExpireStalePending(ctx context.Context) (int, error)
}

type service struct {
	repo          Repository
	offerRepo     offer.Repository
	users         shared.Service
	imageBaseURL  string
	pendingMaxAge time.Duration
	logger        *zap.Logger
}

// NewService creates a new trade service.
func NewService(
	repo Repository,
	offerRepo offer.Repository,
	users shared.Service,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:          repo,
		offerRepo:     offerRepo,
		users:         users,
		imageBaseURL:  strings.TrimRight(cfg.ImageBaseURL, "/"),
		pendingMaxAge: time.Duration(cfg.PendingTradeMaxAgeDays) * 24 * time.Hour,
		logger:        logger.Named("TradeService"),
	}
}

// Propose opens a negotiation against the target offer. The initiator does
// not commit one of their own offers yet; the responder picks one at
// acceptance time.
func (s *service) Propose(ctx context.Context, initiatorID uuid.UUID, req ProposeTradeRequest) (*TradeResponse, error) {
	targetOfferID, err := uuid.Parse(req.TargetOfferID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid offer ID format.")
	}

	targetOffer, err := s.offerRepo.FindByID(ctx, targetOfferID, false)
	if err != nil {
		return nil, err
	}
	if targetOffer.OwnerID == initiatorID {
		return nil, common.ErrForbidden.WithDetails("You cannot trade for your own offer.")
	}
	if !targetOffer.IsActive {
		return nil, common.ErrUnprocessableEntity.WithDetails("This offer is no longer active.")
	}
	if req.WantsToBuy && req.PurchasePrice == nil {
		return nil, common.ErrUnprocessableEntity.WithDetails("A purchase proposal requires a price.")
	}

	initiator, err := s.users.GetUserByID(ctx, initiatorID)
	if err != nil {
		return nil, err
	}

	message := proposalBoilerplate
	if extra := strings.TrimSpace(req.AdditionalMessage); extra != "" {
		message = message + "\n\n" + extra
	}

	t := &Trade{
		InitiatorID:   initiatorID,
		ResponderID:   targetOffer.OwnerID,
		TargetOfferID: targetOffer.ID,
		Message:       message,
		Status:        StatusPending,
		WantsToBuy:    req.WantsToBuy,
		PurchasePrice: req.PurchasePrice,
	}
	n := &notification.Notification{
		RecipientID: targetOffer.OwnerID,
		ActorID:     &initiatorID,
		Type:        notification.TypeTradeProposed,
		Title:       fmt.Sprintf("New trade offer from %s", initiator.Username),
		Message: fmt.Sprintf(
			"%s is interested in your offer. Check their listings for a possible trade or purchase.",
			initiator.Username),
	}

	if err := s.repo.Create(ctx, t, n); err != nil {
		return nil, err
	}
	s.logger.Info("Trade proposed",
		zap.String("tradeID", t.ID.String()),
		zap.String("initiatorID", initiatorID.String()),
		zap.String("targetOfferID", targetOffer.ID.String()))

	created, err := s.repo.FindByID(ctx, t.ID, true)
	if err != nil {
		return nil, err
	}
	resp := ToTradeResponse(created, s.imageBaseURL)
	return &resp, nil
}

// GetByID returns a trade to one of its parties. While the trade is
// pending, the initiator's active offers ride along so the responder can
// choose one.
func (s *service) GetByID(ctx context.Context, id, actorID uuid.UUID) (*TradeDetailResponse, error) {
	t, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if t.RoleOf(actorID) == RoleNone {
		return nil, common.ErrForbidden.WithDetails("You are not a party to this trade.")
	}

	detail := &TradeDetailResponse{TradeResponse: ToTradeResponse(t, s.imageBaseURL)}
	if t.Status == StatusPending {
		offers, err := s.offerRepo.ListByOwner(ctx, t.InitiatorID, true)
		if err != nil {
			return nil, err
		}
		detail.InitiatorActiveOffers = make([]offer.OfferResponse, 0, len(offers))
		for i := range offers {
			detail.InitiatorActiveOffers = append(detail.InitiatorActiveOffers,
				offer.ToOfferResponse(&offers[i], s.imageBaseURL))
		}
	}
	return detail, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]TradeResponse, *common.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = common.DefaultPage
	}
	if filter.PageSize <= 0 || filter.PageSize > common.MaxPageSize {
		filter.PageSize = common.DefaultPageSize
	}

	trades, total, err := s.repo.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}
	responses := make([]TradeResponse, 0, len(trades))
	for i := range trades {
		responses = append(responses, ToTradeResponse(&trades[i], s.imageBaseURL))
	}
	return responses, common.NewPagination(total, filter.Page, filter.PageSize), nil
}

// AcceptWithOffer is the responder accepting the trade in exchange for one
// of the initiator's offers.
func (s *service) AcceptWithOffer(ctx context.Context, tradeID, actorID, offerID uuid.UUID) (*TradeResponse, error) {
	t, err := s.repo.FindByID(ctx, tradeID, false)
	if err != nil {
		return nil, err
	}
	newStatus, err := NextStatus(t.Status, ActionAcceptWithOffer, t.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	chosen, err := s.offerRepo.FindByID(ctx, offerID, false)
	if err != nil {
		return nil, err
	}
	if chosen.OwnerID != t.InitiatorID {
		return nil, common.ErrUnprocessableEntity.WithDetails("The chosen offer must belong to the trade initiator.")
	}
	if !chosen.IsActive {
		return nil, common.ErrUnprocessableEntity.WithDetails("The chosen offer is no longer active.")
	}

	responder, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Transition(ctx, TransitionParams{
		TradeID:           tradeID,
		ExpectedStatus:    t.Status,
		NewStatus:         newStatus,
		SetInitiatorOffer: &offerID,
		Notification: &notification.Notification{
			RecipientID: t.InitiatorID,
			ActorID:     &actorID,
			Type:        notification.TypeTradeAccepted,
			Title:       "Trade accepted!",
			Message: fmt.Sprintf("%s accepted your trade for the item \"%s\"!",
				responder.Username, chosen.Title),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trade accepted with offer",
		zap.String("tradeID", tradeID.String()),
		zap.String("offerID", offerID.String()))
	resp := ToTradeResponse(updated, s.imageBaseURL)
	return &resp, nil
}

// AcceptAsPurchase is the responder accepting the proposed purchase price
// instead of an item. No initiator offer is attached.
func (s *service) AcceptAsPurchase(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error) {
	t, err := s.repo.FindByID(ctx, tradeID, false)
	if err != nil {
		return nil, err
	}
	newStatus, err := NextStatus(t.Status, ActionAcceptPurchase, t.RoleOf(actorID))
	if err != nil {
		return nil, err
	}
	if !t.WantsToBuy {
		return nil, common.ErrUnprocessableEntity.WithDetails("This trade does not include a purchase option.")
	}

	responder, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	price := 0.0
	if t.PurchasePrice != nil {
		price = *t.PurchasePrice
	}

	updated, err := s.repo.Transition(ctx, TransitionParams{
		TradeID:             tradeID,
		ExpectedStatus:      t.Status,
		NewStatus:           newStatus,
		ClearInitiatorOffer: true,
		Notification: &notification.Notification{
			RecipientID: t.InitiatorID,
			ActorID:     &actorID,
			Type:        notification.TypeTradeAccepted,
			Title:       "Purchase accepted!",
			Message: fmt.Sprintf("%s accepted your purchase offer of %.2f!",
				responder.Username, price),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trade accepted as purchase", zap.String("tradeID", tradeID.String()))
	resp := ToTradeResponse(updated, s.imageBaseURL)
	return &resp, nil
}

// Reject is the responder declining a pending trade.
func (s *service) Reject(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error) {
	t, err := s.repo.FindByID(ctx, tradeID, false)
	if err != nil {
		return nil, err
	}
	newStatus, err := NextStatus(t.Status, ActionReject, t.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	responder, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Transition(ctx, TransitionParams{
		TradeID:        tradeID,
		ExpectedStatus: t.Status,
		NewStatus:      newStatus,
		Notification: &notification.Notification{
			RecipientID: t.InitiatorID,
			ActorID:     &actorID,
			Type:        notification.TypeTradeRejected,
			Title:       "Trade rejected",
			Message:     fmt.Sprintf("%s rejected your trade.", responder.Username),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trade rejected", zap.String("tradeID", tradeID.String()))
	resp := ToTradeResponse(updated, s.imageBaseURL)
	return &resp, nil
}

// Complete finalizes an accepted trade. Both offers involved are
// deactivated in the same transaction and the counterparty is notified.
// Completing an already completed trade conflicts rather than repeating the
// side effects.
func (s *service) Complete(ctx context.Context, tradeID, actorID uuid.UUID) (*TradeResponse, error) {
	t, err := s.repo.FindByID(ctx, tradeID, false)
	if err != nil {
		return nil, err
	}
	newStatus, err := NextStatus(t.Status, ActionComplete, t.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	deactivate := []uuid.UUID{t.TargetOfferID}
	if t.InitiatorOfferID != nil {
		deactivate = append(deactivate, *t.InitiatorOfferID)
	}

	updated, err := s.repo.Transition(ctx, TransitionParams{
		TradeID:            tradeID,
		ExpectedStatus:     t.Status,
		NewStatus:          newStatus,
		DeactivateOfferIDs: deactivate,
		Notification: &notification.Notification{
			RecipientID: t.OtherParty(actorID),
			ActorID:     &actorID,
			Type:        notification.TypeTradeCompleted,
			Title:       "Trade completed!",
			Message:     fmt.Sprintf("%s completed the trade. You can now leave a review.", actor.Username),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trade completed",
		zap.String("tradeID", tradeID.String()),
		zap.String("actorID", actorID.String()))
	resp := ToTradeResponse(updated, s.imageBaseURL)
	return &resp, nil
}

func (s *service) CountCompletedForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountCompletedForUser(ctx, userID)
}

// ExpireStalePending auto-rejects pending trades older than the configured
// maximum age, notifying the initiator of each.
func (s *service) ExpireStalePending(ctx context.Context) (int, error) {
	if s.pendingMaxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-s.pendingMaxAge)

	stale, err := s.repo.FindStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		t := &stale[i]
		_, err := s.repo.Transition(ctx, TransitionParams{
			TradeID:        t.ID,
			ExpectedStatus: StatusPending,
			NewStatus:      StatusRejected,
			Notification: &notification.Notification{
				RecipientID: t.InitiatorID,
				Type:        notification.TypeTradeRejected,
				Title:       "Trade expired",
				Message:     "Your trade request expired without a response and was closed.",
			},
		})
		if err != nil {
			if _, ok := common.IsAPIError(err); ok {
				// Lost the race to a concurrent accept/reject; skip it.
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Expired stale pending trades", zap.Int("count", expired))
	}
	return expired, nil
}

// File: internal/trade/model.go
package trade

import (
	"time"

	"barter_backend/internal/common"
	"barter_backend/internal/offer"
	"barter_backend/internal/user"

	"github.com/google/uuid"
)

// Trade statuses.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Trade represents a barter negotiation between two users. The initiator
// proposes against the responder's offer; the offer given in return is only
// fixed when the responder accepts, and stays empty for a purchase.
type Trade struct {
	common.BaseModel
	InitiatorID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Initiator        *user.User   `gorm:"foreignKey:InitiatorID"`
	ResponderID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Responder        *user.User   `gorm:"foreignKey:ResponderID"`
	InitiatorOfferID *uuid.UUID   `gorm:"type:uuid"`
	InitiatorOffer   *offer.Offer `gorm:"foreignKey:InitiatorOfferID"`
	TargetOfferID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	TargetOffer      *offer.Offer `gorm:"foreignKey:TargetOfferID"`
	Message          string       `gorm:"type:text;not null"`
	Status           string       `gorm:"type:varchar(20);not null;default:'pending';index"`
	WantsToBuy       bool         `gorm:"not null;default:false"`
	PurchasePrice    *float64     `gorm:"type:numeric(12,2)"`
}

// TableName specifies the table name for the Trade model.
func (Trade) TableName() string {
	return "trades"
}

// --- DTOs ---

// ProposeTradeRequest starts a negotiation against someone else's offer.
type ProposeTradeRequest struct {
	TargetOfferID     string   `json:"target_offer_id" binding:"required,uuid"`
	AdditionalMessage string   `json:"additional_message,omitempty" binding:"omitempty,max=2000"`
	WantsToBuy        bool     `json:"wants_to_buy,omitempty"`
	PurchasePrice     *float64 `json:"purchase_price,omitempty" binding:"omitempty,gte=0"`
}

// AcceptWithOfferRequest names the initiator's offer the responder accepts
// in exchange.
type AcceptWithOfferRequest struct {
	OfferID string `json:"offer_id" binding:"required,uuid"`
}

// TradePartyResponse is the slim user block embedded in trade responses.
type TradePartyResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TradeResponse is the API representation of a trade.
type TradeResponse struct {
	ID             uuid.UUID            `json:"id"`
	Initiator      TradePartyResponse   `json:"initiator"`
	Responder      TradePartyResponse   `json:"responder"`
	InitiatorOffer *offer.OfferResponse `json:"initiator_offer,omitempty"`
	TargetOffer    *offer.OfferResponse `json:"target_offer,omitempty"`
	Message        string               `json:"message"`
	Status         string               `json:"status"`
	WantsToBuy     bool                 `json:"wants_to_buy"`
	PurchasePrice  *float64             `json:"purchase_price,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// TradeDetailResponse adds the initiator's active offers so the responder
// can pick one to accept.
type TradeDetailResponse struct {
	TradeResponse
	InitiatorActiveOffers []offer.OfferResponse `json:"initiator_active_offers,omitempty"`
}

// ToTradeResponse converts a Trade to its API representation. Associations
// are expected to be preloaded.
func ToTradeResponse(t *Trade, imageBaseURL string) TradeResponse {
	resp := TradeResponse{
		ID:            t.ID,
		Message:       t.Message,
		Status:        t.Status,
		WantsToBuy:    t.WantsToBuy,
		PurchasePrice: t.PurchasePrice,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	resp.Initiator = TradePartyResponse{ID: t.InitiatorID}
	if t.Initiator != nil {
		resp.Initiator.Username = t.Initiator.Username
	}
	resp.Responder = TradePartyResponse{ID: t.ResponderID}
	if t.Responder != nil {
		resp.Responder.Username = t.Responder.Username
	}
	if t.InitiatorOffer != nil {
		o := offer.ToOfferResponse(t.InitiatorOffer, imageBaseURL)
		resp.InitiatorOffer = &o
	}
	if t.TargetOffer != nil {
		o := offer.ToOfferResponse(t.TargetOffer, imageBaseURL)
		resp.TargetOffer = &o
	}
	return resp
}

// File: internal/trade/handler.go
package trade

import (
	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to trades.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new trade handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("TradeHandler")}
}

// RegisterRoutes sets up the routes for trade operations. Every route
// requires authentication; the service enforces which party may act.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	trades := router.Group("/trades")
	trades.Use(middleware.AuthMiddleware(tokenService, h.logger))
	{
		trades.POST("", h.propose)
		trades.GET("", h.list)
		trades.GET("/:id", h.getByID)
		trades.POST("/:id/accept-with-offer", h.acceptWithOffer)
		trades.POST("/:id/accept-purchase", h.acceptAsPurchase)
		trades.POST("/:id/reject", h.reject)
		trades.POST("/:id/complete", h.complete)
	}
}

func (h *Handler) propose(c *gin.Context) {
	initiatorID := common.GetUserIDFromContext(c)

	var req ProposeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	t, err := h.service.Propose(c.Request.Context(), initiatorID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Trade request sent.", t)
}

func (h *Handler) list(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	page, pageSize := common.GetPaginationParams(c)

	filter := ListFilter{
		Direction: c.Query("direction"),
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  pageSize,
	}

	trades, pagination, err := h.service.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "", trades, pagination)
}

func (h *Handler) getByID(c *gin.Context) {
	id, actorID, ok := h.tradeAndActor(c)
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), id, actorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", t)
}

func (h *Handler) acceptWithOffer(c *gin.Context) {
	id, actorID, ok := h.tradeAndActor(c)
	if !ok {
		return
	}

	var req AcceptWithOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}
	offerID, err := uuid.Parse(req.OfferID)
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid offer ID format."))
		return
	}

	t, err := h.service.AcceptWithOffer(c.Request.Context(), id, actorID, offerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Trade accepted.", t)
}

func (h *Handler) acceptAsPurchase(c *gin.Context) {
	id, actorID, ok := h.tradeAndActor(c)
	if !ok {
		return
	}

	t, err := h.service.AcceptAsPurchase(c.Request.Context(), id, actorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Purchase accepted.", t)
}

func (h *Handler) reject(c *gin.Context) {
	id, actorID, ok := h.tradeAndActor(c)
	if !ok {
		return
	}

	t, err := h.service.Reject(c.Request.Context(), id, actorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Trade rejected.", t)
}

func (h *Handler) complete(c *gin.Context) {
	id, actorID, ok := h.tradeAndActor(c)
	if !ok {
		return
	}

	t, err := h.service.Complete(c.Request.Context(), id, actorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Trade completed.", t)
}

func (h *Handler) tradeAndActor(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid trade ID format."))
		return uuid.Nil, uuid.Nil, false
	}
	return id, common.GetUserIDFromContext(c), true
}

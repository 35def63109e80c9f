// File: internal/message/handler.go
package message

import (
	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to direct messages.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new message handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("MessageHandler")}
}

// RegisterRoutes sets up the routes for messaging. All routes require
// authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	messages := router.Group("/messages")
	messages.Use(middleware.AuthMiddleware(tokenService, h.logger))
	{
		messages.GET("", h.listConversations)
		messages.GET("/unread-count", h.unreadCount)
		messages.GET("/:username", h.viewConversation)
		messages.POST("/:username", h.send)
	}
}

func (h *Handler) listConversations(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	conversations, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", conversations)
}

func (h *Handler) unreadCount(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", gin.H{"unread_count": count})
}

func (h *Handler) viewConversation(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	msgs, err := h.service.ViewConversation(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", msgs)
}

func (h *Handler) send(c *gin.Context) {
	senderID := common.GetUserIDFromContext(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), senderID, c.Param("username"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message sent.", msg)
}

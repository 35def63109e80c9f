// File: internal/notification/handler.go
package notification

import (
	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to notifications.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("NotificationHandler")}
}

// RegisterRoutes sets up the routes for notification operations.
// All routes require authentication; users only ever see their own
// notifications.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	notifications := router.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(tokenService, h.logger))
	{
		notifications.GET("", h.list)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.POST("/:id/read", h.markRead)
		notifications.POST("/read-all", h.markAllRead)
		notifications.DELETE("/:id", h.delete)
	}
}

func (h *Handler) list(c *gin.Context) {
	recipientID := common.GetUserIDFromContext(c)
	page, pageSize := common.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	items, pagination, err := h.service.List(c.Request.Context(), recipientID, unreadOnly, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "", items, pagination)
}

func (h *Handler) unreadCount(c *gin.Context) {
	recipientID := common.GetUserIDFromContext(c)

	count, err := h.service.UnreadCount(c.Request.Context(), recipientID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", gin.H{"unread_count": count})
}

func (h *Handler) markRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}
	recipientID := common.GetUserIDFromContext(c)

	if err := h.service.MarkRead(c.Request.Context(), id, recipientID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	recipientID := common.GetUserIDFromContext(c)

	updated, err := h.service.MarkAllRead(c.Request.Context(), recipientID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", gin.H{"updated": updated})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}
	recipientID := common.GetUserIDFromContext(c)

	if err := h.service.Delete(c.Request.Context(), id, recipientID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

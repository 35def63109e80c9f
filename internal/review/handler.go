// File: internal/review/handler.go
package review

import (
	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to reviews.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new review handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ReviewHandler")}
}

// RegisterRoutes sets up the routes for review operations. Reading a
// user's reviews is public; writing one requires authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	router.GET("/users/:username/reviews", h.listForUser)

	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(tokenService, h.logger))
	{
		authed.POST("/users/:username/reviews", h.create)
	}
}

func (h *Handler) listForUser(c *gin.Context) {
	reviews, err := h.service.ListForUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", reviews)
}

func (h *Handler) create(c *gin.Context) {
	reviewerID := common.GetUserIDFromContext(c)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	rev, err := h.service.Create(c.Request.Context(), reviewerID, c.Param("username"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Review published.", rev)
}

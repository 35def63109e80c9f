// File: internal/user/handler.go
package user

import (
	"net/http"

	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to users.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("UserHandler")}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	users := router.Group("/users")
	{
		users.POST("/register", h.register)
		users.GET("/:username", h.getPublicProfile)
		users.GET("/:username/stats", h.getStats)

		authed := users.Group("")
		authed.Use(middleware.AuthMiddleware(tokenService, h.logger))
		{
			authed.GET("/me", h.getMe)
			authed.PATCH("/me", h.updateMe)
		}
	}
}

func (h *Handler) register(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	usr, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "User registered successfully.", ToUserResponse(usr, true))
}

func (h *Handler) getMe(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	usr, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", ToUserResponse(usr, true))
}

func (h *Handler) updateMe(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	usr, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToUserResponse(usr, true))
}

func (h *Handler) getPublicProfile(c *gin.Context) {
	username := c.Param("username")

	usr, err := h.service.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "", ToUserResponse(usr, false))
}

func (h *Handler) getStats(c *gin.Context) {
	username := c.Param("username")

	stats, err := h.service.GetUserStats(c.Request.Context(), username)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", stats)
}

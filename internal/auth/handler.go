// File: internal/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"barter_backend/internal/common"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserLoginService is the slice of the user service the auth handler needs.
// Credential checking stays in the user domain; token minting stays here.
type UserLoginService interface {
	Login(ctx context.Context, email, password string) (*shared.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	userService  UserLoginService
	tokenService shared.TokenService
	oauthService OAuthService
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	userService UserLoginService,
	tokenService shared.TokenService,
	oauthService OAuthService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService:  userService,
		tokenService: tokenService,
		oauthService: oauthService,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the /auth routes. Login/refresh/OAuth are public.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.login)
	router.POST("/refresh", h.refreshToken)
	router.GET("/google/login", h.googleLogin)
	router.GET("/google/callback", h.googleCallback)
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	usr, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	tokens, err := generateTokenPair(h.tokenService, usr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", gin.H{"user": usr, "tokens": tokens})
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("refresh_token is required."))
		return
	}

	claims, err := h.tokenService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token."))
		return
	}

	usr, err := h.userService.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User for refresh token no longer exists."))
		return
	}

	tokens, err := generateTokenPair(h.tokenService, usr)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Token refreshed.", tokens)
}

func (h *Handler) googleLogin(c *gin.Context) {
	url, err := h.oauthService.GetGoogleLoginURL(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func (h *Handler) googleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing code or state parameter."))
		return
	}

	usr, tokens, err := h.oauthService.HandleGoogleCallback(c, code, state)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Google login successful.", gin.H{"user": usr, "tokens": tokens})
}

// File: internal/category/handler.go
package category

import (
	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to categories.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new category handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("CategoryHandler")}
}

// RegisterRoutes sets up the routes for category operations.
// Creation and updates are restricted to admins.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.list)
		categories.GET("/:slug", h.getBySlug)

		admin := categories.Group("")
		admin.Use(middleware.AuthMiddleware(tokenService, h.logger), middleware.RoleAuthMiddleware(common.RoleAdmin))
		{
			admin.POST("", h.create)
			admin.PATCH("/:id", h.update)
		}
	}
}

func (h *Handler) list(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true" &&
		common.GetUserRoleFromContext(c) == common.RoleAdmin

	cats, err := h.service.List(c.Request.Context(), includeInactive)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", cats)
}

func (h *Handler) getBySlug(c *gin.Context) {
	cat, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", cat)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	cat, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Category created successfully.", cat)
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid category ID format."))
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	cat, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Category updated successfully.", cat)
}

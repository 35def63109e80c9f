// File: internal/offer/handler.go
package offer

import (
	"mime/multipart"

	"barter_backend/internal/common"
	"barter_backend/internal/middleware"
	"barter_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests related to offers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new offer handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("OfferHandler")}
}

// RegisterRoutes sets up the routes for offer operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenService shared.TokenService) {
	offers := router.Group("/offers")
	{
		offers.GET("", h.search)
		offers.GET("/:id", h.getByID)

		authed := offers.Group("")
		authed.Use(middleware.AuthMiddleware(tokenService, h.logger))
		{
			authed.POST("", h.create)
			authed.GET("/mine", h.listMine)
			authed.GET("/:id/stats", h.stats)
			authed.PATCH("/:id", h.update)
			authed.DELETE("/:id", h.delete)
		}
	}
}

func (h *Handler) search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	offers, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "", offers, pagination)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid offer ID format."))
		return
	}
	// Viewer may be anonymous; uuid.Nil counts the view.
	viewerID := common.GetUserIDFromContext(c)

	o, err := h.service.GetByID(c.Request.Context(), id, viewerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", o)
}

func (h *Handler) listMine(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	activeOnly := c.Query("active") == "true"

	offers, err := h.service.ListByOwner(c.Request.Context(), ownerID, activeOnly)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", offers)
}

func (h *Handler) create(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)

	var req CreateOfferRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	o, err := h.service.Create(c.Request.Context(), ownerID, req, h.imageFromForm(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Offer created successfully.", o)
}

func (h *Handler) update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid offer ID format."))
		return
	}
	actorID := common.GetUserIDFromContext(c)

	var req UpdateOfferRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(err))
		return
	}

	o, err := h.service.Update(c.Request.Context(), id, actorID, req, h.imageFromForm(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Offer updated successfully.", o)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid offer ID format."))
		return
	}
	actorID := common.GetUserIDFromContext(c)

	if err := h.service.Delete(c.Request.Context(), id, actorID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) stats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid offer ID format."))
		return
	}
	actorID := common.GetUserIDFromContext(c)

	stats, err := h.service.GetStats(c.Request.Context(), id, actorID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", stats)
}

func (h *Handler) imageFromForm(c *gin.Context) *multipart.FileHeader {
	file, err := c.FormFile("image")
	if err != nil {
		return nil
	}
	return file
}

// File: internal/offer/service.go
package offer

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"

	"barter_backend/internal/category"
	"barter_backend/internal/common"
	"barter_backend/internal/config"
	"barter_backend/internal/filestorage"
	platformES "barter_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Indexer mirrors offer writes into the search index. Implementations must
// tolerate a disabled backend by no-opping.
type Indexer interface {
	IndexOffer(ctx context.Context, o *Offer) error
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

// Service defines the operations the offer domain exposes.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateOfferRequest, image *multipart.FileHeader) (*OfferResponse, error)
	Update(ctx context.Context, id, actorID uuid.UUID, req UpdateOfferRequest, image *multipart.FileHeader) (*OfferResponse, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*OfferResponse, error)
	Search(ctx context.Context, query SearchQuery) ([]OfferResponse, *common.Pagination, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]OfferResponse, error)
	GetStats(ctx context.Context, id, actorID uuid.UUID) (*OfferStatsResponse, error)

	// CountForOwner feeds the public profile statistics.
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (total int64, active int64, err error)
}

type service struct {
	repo         Repository
	categoryRepo category.Repository
	files        *filestorage.Service
	indexer      Indexer
	es           *platformES.ESClientWrapper
	imageBaseURL string
	logger       *zap.Logger
}

// NewService creates a new offer service.
func NewService(
	repo Repository,
	categoryRepo category.Repository,
	files *filestorage.Service,
	indexer Indexer,
	es *platformES.ESClientWrapper,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		repo:         repo,
		categoryRepo: categoryRepo,
		files:        files,
		indexer:      indexer,
		es:           es,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		logger:       logger.Named("OfferService"),
	}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateOfferRequest, image *multipart.FileHeader) (*OfferResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid category ID format.")
	}
	cat, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, common.ErrUnprocessableEntity.WithDetails("This category is no longer accepting offers.")
	}

	o := &Offer{
		OwnerID:     ownerID,
		CategoryID:  cat.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		PriceRange:  req.PriceRange,
		Location:    req.Location,
		City:        req.City,
		Tags:        normalizeTags(req.Tags),
		IsActive:    true,
	}

	if image != nil {
		path, err := s.files.Save(image, "offers")
		if err != nil {
			return nil, common.ErrUnprocessableEntity.WithDetails(err.Error())
		}
		o.ImagePath = &path
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, o.ID, true)
	if err != nil {
		return nil, err
	}
	if err := s.indexer.IndexOffer(ctx, created); err != nil {
		s.logger.Warn("Failed to index offer", zap.String("offerID", created.ID.String()), zap.Error(err))
	}

	s.logger.Info("Offer created", zap.String("offerID", created.ID.String()), zap.String("ownerID", ownerID.String()))
	resp := ToOfferResponse(created, s.imageBaseURL)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id, actorID uuid.UUID, req UpdateOfferRequest, image *multipart.FileHeader) (*OfferResponse, error) {
	existing, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, common.ErrForbidden.WithDetails("You can only edit your own offers.")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, common.ErrBadRequest.WithDetails("Invalid category ID format.")
		}
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}
	if req.PriceRange != nil {
		fields["price_range"] = *req.PriceRange
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.Tags != nil {
		fields["tags"] = normalizeTags(req.Tags)
	}
	if req.IsActive != nil {
		// An offer deactivated by a completed trade stays consumed; the
		// owner cannot relist it by flipping the flag back.
		if *req.IsActive && !existing.IsActive {
			_, completed, err := s.repo.TradeCountsForOffer(ctx, id)
			if err != nil {
				return nil, err
			}
			if completed > 0 {
				return nil, common.ErrConflict.WithDetails("This offer was traded away and cannot be reactivated.")
			}
		}
		fields["is_active"] = *req.IsActive
	}

	var oldImage *string
	if image != nil {
		path, err := s.files.Save(image, "offers")
		if err != nil {
			return nil, common.ErrUnprocessableEntity.WithDetails(err.Error())
		}
		fields["image_path"] = path
		oldImage = existing.ImagePath
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	if oldImage != nil {
		if err := s.files.Delete(*oldImage); err != nil {
			s.logger.Warn("Failed to remove replaced offer image", zap.String("path", *oldImage), zap.Error(err))
		}
	}

	updated, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.indexer.IndexOffer(ctx, updated); err != nil {
		s.logger.Warn("Failed to reindex offer", zap.String("offerID", id.String()), zap.Error(err))
	}

	resp := ToOfferResponse(updated, s.imageBaseURL)
	return &resp, nil
}

func (s *service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if existing.OwnerID != actorID {
		return common.ErrForbidden.WithDetails("You can only delete your own offers.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if existing.ImagePath != nil {
		if err := s.files.Delete(*existing.ImagePath); err != nil {
			s.logger.Warn("Failed to remove offer image", zap.String("path", *existing.ImagePath), zap.Error(err))
		}
	}
	if err := s.indexer.DeleteOffer(ctx, id); err != nil {
		s.logger.Warn("Failed to remove offer from index", zap.String("offerID", id.String()), zap.Error(err))
	}

	s.logger.Info("Offer deleted", zap.String("offerID", id.String()), zap.String("actorID", actorID.String()))
	return nil
}

// GetByID returns an offer and counts the view when someone other than the
// owner looks at it.
func (s *service) GetByID(ctx context.Context, id uuid.UUID, viewerID uuid.UUID) (*OfferResponse, error) {
	o, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}

	if viewerID != o.OwnerID {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("Failed to increment offer views", zap.String("offerID", id.String()), zap.Error(err))
		} else {
			o.ViewsCount++
		}
	}

	resp := ToOfferResponse(o, s.imageBaseURL)
	return &resp, nil
}

func (s *service) Search(ctx context.Context, query SearchQuery) ([]OfferResponse, *common.Pagination, error) {
	if query.Page <= 0 {
		query.Page = common.DefaultPage
	}
	if query.PageSize <= 0 || query.PageSize > common.MaxPageSize {
		query.PageSize = common.DefaultPageSize
	}

	if s.es.Enabled() && query.Term != "" {
		offers, total, err := s.searchElasticsearch(ctx, query)
		if err == nil {
			return s.toResponses(offers), common.NewPagination(total, query.Page, query.PageSize), nil
		}
		s.logger.Warn("Elasticsearch search failed, falling back to database", zap.Error(err))
	}

	offers, total, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return s.toResponses(offers), common.NewPagination(total, query.Page, query.PageSize), nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]OfferResponse, error) {
	offers, err := s.repo.ListByOwner(ctx, ownerID, activeOnly)
	if err != nil {
		return nil, err
	}
	return s.toResponses(offers), nil
}

func (s *service) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	return s.repo.CountForOwner(ctx, ownerID)
}

// GetStats returns view and trade counts for an offer. Owner only.
func (s *service) GetStats(ctx context.Context, id, actorID uuid.UUID) (*OfferStatsResponse, error) {
	o, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != actorID {
		return nil, common.ErrForbidden.WithDetails("You can only view stats for your own offers.")
	}

	total, completed, err := s.repo.TradeCountsForOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OfferStatsResponse{
		OfferID:         o.ID,
		Title:           o.Title,
		IsActive:        o.IsActive,
		ViewsCount:      o.ViewsCount,
		TradesCount:     total,
		CompletedTrades: completed,
	}, nil
}

// searchElasticsearch runs a full-text query against the offers index and
// rehydrates the hits from the database to keep response shapes uniform.
func (s *service) searchElasticsearch(ctx context.Context, query SearchQuery) ([]Offer, int64, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query.Term,
				"fields": []string{"title^2", "description", "tags"},
			},
		},
	}
	filter := []map[string]interface{}{
		{"term": map[string]interface{}{"is_active": true}},
	}
	if query.CategorySlug != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category_slug": query.CategorySlug},
		})
	}
	if query.City != "" {
		filter = append(filter, map[string]interface{}{
			"match": map[string]interface{}{"city": query.City},
		})
	}

	body, err := json.Marshal(map[string]interface{}{
		"from": (query.Page - 1) * query.PageSize,
		"size": query.PageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("building search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{platformES.OffersIndexName},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, 0, fmt.Errorf("executing search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search returned %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decoding search response: %w", err)
	}

	offers := make([]Offer, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		o, err := s.repo.FindByID(ctx, id, true)
		if err != nil {
			// Index can briefly reference rows deleted from the database.
			continue
		}
		offers = append(offers, *o)
	}
	return offers, parsed.Hits.Total.Value, nil
}

// normalizeTags trims, lowercases and deduplicates tags, dropping empties.
func normalizeTags(tags []string) pq.StringArray {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make(pq.StringArray, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (s *service) toResponses(offers []Offer) []OfferResponse {
	responses := make([]OfferResponse, 0, len(offers))
	for i := range offers {
		responses = append(responses, ToOfferResponse(&offers[i], s.imageBaseURL))
	}
	return responses
}

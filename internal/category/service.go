// File: internal/category/service.go
package category

import (
	"context"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the operations the category domain exposes.
type Service interface {
	Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error)
	GetBySlug(ctx context.Context, slugValue string) (*CategoryResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context, includeInactive bool) ([]CategoryResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new category service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("CategoryService")}
}

func (s *service) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	cat := &Category{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	s.logger.Info("Category created", zap.String("categoryID", cat.ID.String()), zap.String("slug", cat.Slug))
	resp := ToCategoryResponse(cat, 0)
	return &resp, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	cat, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != cat.Name {
		cat.Name = *req.Name
		cat.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		cat.Description = req.Description
	}
	if req.Icon != nil {
		cat.Icon = req.Icon
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	count, err := s.repo.CountActiveOffers(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(cat, count)
	return &resp, nil
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (*CategoryResponse, error) {
	cat, err := s.repo.FindBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, common.ErrNotFound.WithDetails("Category not found.")
	}
	count, err := s.repo.CountActiveOffers(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(cat, count)
	return &resp, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]CategoryResponse, error) {
	cats, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, 0, len(cats))
	for i := range cats {
		count, err := s.repo.CountActiveOffers(ctx, cats[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, ToCategoryResponse(&cats[i], count))
	}
	return responses, nil
}

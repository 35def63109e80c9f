// File: internal/offer/esutil/util.go
package esutil

import (
	"encoding/json"
	"errors"
	"fmt"

	"barter_backend/internal/offer"
)

// OfferToElasticsearchDoc converts an offer to its Elasticsearch document
// representation. The Owner and Category associations are expected to be
// preloaded.
func OfferToElasticsearchDoc(o *offer.Offer) (string, error) {
	if o == nil {
		return "", errors.New("offer cannot be nil")
	}

	doc := map[string]interface{}{
		"title":       o.Title,
		"description": o.Description,
		"category_id": o.CategoryID.String(),
		"owner_id":    o.OwnerID.String(),
		"is_active":   o.IsActive,
		"views_count": o.ViewsCount,
		"created_at":  o.CreatedAt,
		"updated_at":  o.UpdatedAt,
	}
	if o.PriceRange != nil {
		doc["price_range"] = *o.PriceRange
	}
	if len(o.Tags) > 0 {
		doc["tags"] = []string(o.Tags)
	}
	if o.City != nil {
		doc["city"] = *o.City
	}
	if o.Owner != nil {
		doc["owner_username"] = o.Owner.Username
	}
	if o.Category.Slug != "" {
		doc["category_name"] = o.Category.Name
		doc["category_slug"] = o.Category.Slug
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshalling offer for indexing: %w", err)
	}
	return string(docBytes), nil
}

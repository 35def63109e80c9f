// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const OffersIndexName = "offers"

// defineOffersMapping returns the JSON string for the offers index mapping.
func defineOffersMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":       map[string]interface{}{"type": "text"},
				"description": map[string]interface{}{"type": "text"},
				"category_id": map[string]interface{}{"type": "keyword"},
				"owner_id":    map[string]interface{}{"type": "keyword"},
				"is_active":   map[string]interface{}{"type": "boolean"},
				"price_range": map[string]interface{}{"type": "keyword"},
				"location":    map[string]interface{}{"type": "text"},
				"city": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
					},
				},
				"tags": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
					},
				},
				"views_count": map[string]interface{}{"type": "integer"},
				"created_at":  map[string]interface{}{"type": "date"},
				"updated_at":  map[string]interface{}{"type": "date"},
			},
		},
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("failed to marshal offers index mapping: %w", err)
	}
	return string(data), nil
}

// CreateOffersIndexIfNotExists creates the offers index with its mapping
// if it is not already present.
func CreateOffersIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	if !client.Enabled() {
		return nil
	}

	existsRes, err := esapi.IndicesExistsRequest{Index: []string{OffersIndexName}}.Do(context.Background(), client.Client)
	if err != nil {
		return fmt.Errorf("checking offers index existence: %w", err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == 200 {
		logger.Debug("Offers index already exists", zap.String("index", OffersIndexName))
		return nil
	}

	mapping, err := defineOffersMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: OffersIndexName,
		Body:  strings.NewReader(mapping),
	}.Do(context.Background(), client.Client)
	if err != nil {
		return fmt.Errorf("creating offers index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("creating offers index failed: %s", createRes.Status())
	}

	logger.Info("Offers index created", zap.String("index", OffersIndexName))
	return nil
}

// File: internal/offer/esutil/indexer.go
package esutil

import (
	"context"
	"fmt"
	"strings"

	"barter_backend/internal/offer"
	platformES "barter_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Indexer mirrors offer writes into the Elasticsearch offers index. When
// the cluster is not configured every call is a no-op, so callers never
// branch on availability.
type Indexer struct {
	es     *platformES.ESClientWrapper
	logger *zap.Logger
}

// NewIndexer creates an offer indexer. es may be nil when Elasticsearch is
// disabled.
func NewIndexer(es *platformES.ESClientWrapper, logger *zap.Logger) *Indexer {
	return &Indexer{es: es, logger: logger.Named("OfferIndexer")}
}

var _ offer.Indexer = (*Indexer)(nil)

// IndexOffer creates or replaces the document for an offer.
func (i *Indexer) IndexOffer(ctx context.Context, o *offer.Offer) error {
	if !i.es.Enabled() {
		return nil
	}

	docJSON, err := OfferToElasticsearchDoc(o)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      platformES.OffersIndexName,
		DocumentID: o.ID.String(),
		Body:       strings.NewReader(docJSON),
	}
	res, err := req.Do(ctx, i.es.Client)
	if err != nil {
		return fmt.Errorf("indexing offer %s: %w", o.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing offer %s: %s", o.ID, res.String())
	}
	i.logger.Debug("Offer indexed", zap.String("offerID", o.ID.String()))
	return nil
}

// DeleteOffer removes the document for an offer. A missing document is not
// an error.
func (i *Indexer) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	if !i.es.Enabled() {
		return nil
	}

	req := esapi.DeleteRequest{
		Index:      platformES.OffersIndexName,
		DocumentID: id.String(),
	}
	res, err := req.Do(ctx, i.es.Client)
	if err != nil {
		return fmt.Errorf("deleting offer %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting offer %s from index: %s", id, res.String())
	}
	return nil
}

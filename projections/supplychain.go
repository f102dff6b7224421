package projections

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/pkg/errors"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/eventstore"
)

// SupplyChainProjector indexes recorded events and the recomputed item
// status into Elasticsearch for search and dashboards. The event log
// stays the source of truth; these documents are disposable.
type SupplyChainProjector struct {
	store         eventstore.EventStore
	elasticClient *elasticsearch.Client
	cfg           config.ElasticConfig
}

// NewSupplyChainProjector creates a new projector
func NewSupplyChainProjector(store eventstore.EventStore, elasticClient *elasticsearch.Client, cfg config.ElasticConfig) *SupplyChainProjector {
	return &SupplyChainProjector{
		store:         store,
		elasticClient: elasticClient,
		cfg:           cfg,
	}
}

// Project indexes one event and refreshes the item's status document
func (p *SupplyChainProjector) Project(ctx context.Context, event domain.Event) error {
	if err := p.indexEvent(ctx, event); err != nil {
		return err
	}
	return p.indexItemStatus(ctx, event.ItemID)
}

// indexEvent writes the event document
func (p *SupplyChainProjector) indexEvent(ctx context.Context, event domain.Event) error {
	doc, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	return p.index(ctx, config.FormatIndex(p.cfg, EventsIndex), event.ID, doc)
}

// indexItemStatus recomputes and writes the item's status document
func (p *SupplyChainProjector) indexItemStatus(ctx context.Context, itemID string) error {
	history, err := p.store.History(ctx, itemID)
	if err != nil {
		return errors.Wrap(err, "failed to load event history")
	}

	status, err := domain.DeriveStatus(itemID, itemID, history, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to derive status")
	}

	doc, err := json.Marshal(status)
	if err != nil {
		return errors.Wrap(err, "failed to marshal status")
	}

	return p.index(ctx, config.FormatIndex(p.cfg, ItemsIndex), itemID, doc)
}

// index writes one document
func (p *SupplyChainProjector) index(ctx context.Context, index, id string, doc []byte) error {
	res, err := p.elasticClient.Index(
		index,
		bytes.NewReader(doc),
		p.elasticClient.Index.WithDocumentID(id),
		p.elasticClient.Index.WithRefresh("true"),
		p.elasticClient.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to index document in %s", index)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("failed to index document in %s: %s", index, res.String())
	}

	return nil
}

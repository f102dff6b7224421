// Package catalog resolves item display names through the external
// product catalog collaborator. Names are opaque to the engine and are
// never validated here.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"example.com/backstage/services/supplychain/config"
)

// ProductCatalog looks up display names for tracked items
type ProductCatalog interface {
	ProductName(ctx context.Context, itemID string) (string, error)
}

// HTTPCatalog is the product catalog HTTP client
type HTTPCatalog struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPCatalog creates a new catalog client
func NewHTTPCatalog(cfg config.CatalogConfig) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// productResponse is the catalog's product payload
type productResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ProductName fetches the display name for an item
func (c *HTTPCatalog) ProductName(ctx context.Context, itemID string) (string, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, itemID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build catalog request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to call product catalog")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("product catalog returned status %d for item %s", resp.StatusCode, itemID)
	}

	var product productResponse
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return "", errors.Wrap(err, "failed to decode catalog response")
	}

	return product.Name, nil
}

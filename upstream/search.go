package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"pricewatch/internal/types"
	"pricewatch/utils"
)

// ErrUnavailable marks the one failure class that aborts a whole
// comparison request: the primary search call exhausted its retries.
var ErrUnavailable = errors.New("search provider unavailable")

// Client queries the shopping search provider and normalizes its
// schema-variable responses into RawOffer values.
type Client struct {
	config  *types.Config
	logger  types.Logger
	fetcher *utils.HTTPClient
}

// NewClient creates a search client using the given fetch executor.
func NewClient(config *types.Config, logger types.Logger, fetcher *utils.HTTPClient) *Client {
	return &Client{
		config:  config,
		logger:  logger,
		fetcher: fetcher,
	}
}

// Search runs the primary shopping search for a free-text query. A
// response that lacks any recognizable offer list is treated as zero
// offers, not an error; only retry exhaustion is fatal.
func (c *Client) Search(ctx context.Context, query string) ([]types.RawOffer, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("location", c.config.Location)
	params.Set("hl", c.config.Language)
	params.Set("gl", c.config.Country)
	params.Set("google_domain", c.config.GoogleDomain)
	params.Set("api_key", c.config.APIKey)
	params.Set("num", strconv.Itoa(c.config.ResultCount))

	searchURL := c.config.SearchBaseURL + "?" + params.Encode()

	body, err := c.fetcher.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warnf("Search response is not valid JSON: %v", err)
		return nil, nil
	}

	items := findOfferList(payload)
	if items == nil {
		c.logger.Warnf("No offer list found in search response for %q", query)
		return nil, nil
	}

	offers := make([]types.RawOffer, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		offers = append(offers, extractOffer(entry))
	}

	c.logger.Infof("Search for %q returned %d raw offers", query, len(offers))
	return offers, nil
}

// offerListFields are the response keys the offer list has been observed
// under, tried in order. Provider configurations vary the key name.
var offerListFields = []string{
	"shopping_results",
	"inline_shopping_results",
	"organic_results",
}

func findOfferList(payload map[string]any) []any {
	for _, field := range offerListFields {
		if items, ok := payload[field].([]any); ok {
			return items
		}
	}
	return nil
}

// extractOffer pulls the logical offer fields out of one result entry,
// probing an ordered list of candidate keys per field since providers
// rename them between response shapes.
func extractOffer(entry map[string]any) types.RawOffer {
	return types.RawOffer{
		Title:     stringField(entry, "title"),
		Price:     anyField(entry, "extracted_price", "price", "prices"),
		Merchant:  stringField(entry, "source", "merchant", "seller"),
		Link:      stringField(entry, "product_link", "link"),
		Image:     stringField(entry, "thumbnail", "image"),
		Rating:    floatField(entry, "rating"),
		DetailURL: stringField(entry, "serpapi_immersive_product_api", "immersive_product_api"),
	}
}

func anyField(entry map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := entry[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := entry[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func floatField(entry map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if f, ok := entry[key].(float64); ok {
			return f
		}
	}
	return 0
}

package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pricewatch/internal/types"
	"pricewatch/utils"
)

// StructuredStrategy resolves links through the provider's detail API,
// which returns seller records with direct merchant URLs. This is the
// preferred path: no scraping and no heuristics on HTML.
type StructuredStrategy struct {
	config    *types.Config
	logger    types.Logger
	merchants MerchantMatcher
	fetcher   *utils.HTTPClient
}

// NewStructuredStrategy creates the structured lookup strategy.
func NewStructuredStrategy(config *types.Config, logger types.Logger, merchants MerchantMatcher, fetcher *utils.HTTPClient) *StructuredStrategy {
	return &StructuredStrategy{
		config:    config,
		logger:    logger,
		merchants: merchants,
		fetcher:   fetcher,
	}
}

// Resolve fetches the offer's detail API URL and returns the link of the
// seller record matching the offer's merchant.
func (s *StructuredStrategy) Resolve(ctx context.Context, offer types.NormalizedOffer) (string, error) {
	if offer.DetailURL == "" {
		return "", fmt.Errorf("no detail API url for %s", offer.MerchantKey)
	}

	sellers, err := s.fetchSellers(ctx, offer.DetailURL)
	if err != nil {
		return "", err
	}

	for _, seller := range sellers {
		if seller.Link == "" {
			continue
		}
		if key, ok := s.merchants.Resolve(seller.Name); ok && key == offer.MerchantKey {
			return seller.Link, nil
		}
	}

	// Unknown seller names can still belong to the right merchant
	// ("Amazon.fr - Marketplace" style suffixes), so fall back to plain
	// name containment against the offer's display name.
	nameLower := strings.ToLower(offer.MerchantName)
	for _, seller := range sellers {
		if seller.Link == "" {
			continue
		}
		sellerLower := strings.ToLower(seller.Name)
		if strings.Contains(sellerLower, nameLower) || strings.Contains(nameLower, sellerLower) {
			return seller.Link, nil
		}
	}

	return "", fmt.Errorf("no seller record matched %s", offer.MerchantKey)
}

func (s *StructuredStrategy) fetchSellers(ctx context.Context, detailURL string) ([]types.SellerRecord, error) {
	body, err := s.fetcher.Get(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("detail lookup failed: %w", err)
	}

	var payload struct {
		OnlineSellers []struct {
			Name           string  `json:"name"`
			Price          any     `json:"price"`
			ExtractedPrice float64 `json:"extracted_price"`
			Link           string  `json:"link"`
			Rating         float64 `json:"rating"`
		} `json:"online_sellers"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode seller records: %w", err)
	}

	sellers := make([]types.SellerRecord, 0, len(payload.OnlineSellers))
	for _, raw := range payload.OnlineSellers {
		price := raw.ExtractedPrice
		if price == 0 {
			if p, ok := raw.Price.(float64); ok {
				price = p
			}
		}
		sellers = append(sellers, types.SellerRecord{
			Name:   raw.Name,
			Price:  price,
			Link:   raw.Link,
			Rating: raw.Rating,
		})
	}

	s.logger.Debugf("Detail lookup returned %d sellers", len(sellers))
	return sellers, nil
}

// Package pipeline turns loosely-structured shopping search results into
// a deduplicated, price-sorted list of per-merchant offers with resolved
// purchase links.
package pipeline

import (
	"context"
	"strings"
	"time"

	"pricewatch/internal/types"
	"pricewatch/resolver"
	"pricewatch/upstream"
	"pricewatch/utils"
)

// searchClient is the primary search dependency, satisfied by
// upstream.Client.
type searchClient interface {
	Search(ctx context.Context, query string) ([]types.RawOffer, error)
}

// linkResolver is the link resolution dependency, satisfied by
// resolver.Resolver.
type linkResolver interface {
	ResolveAll(ctx context.Context, offers []types.NormalizedOffer) []types.ResolvedOffer
}

// Pipeline runs one price comparison end to end: search, normalize,
// dedup/rank, resolve links. Instances are safe for concurrent use; all
// state is read-only configuration.
type Pipeline struct {
	config   *types.Config
	logger   types.Logger
	aliases  AliasTable
	search   searchClient
	resolver linkResolver
}

// New wires a pipeline from configuration, with the default alias table.
func New(config *types.Config, logger types.Logger) *Pipeline {
	aliases := DefaultAliasTable()
	return &Pipeline{
		config:   config,
		logger:   logger,
		aliases:  aliases,
		search:   upstream.NewClient(config, logger, utils.NewHTTPClient(config, logger)),
		resolver: resolver.New(config, logger, aliases),
	}
}

// NewWithDeps wires a pipeline with explicit collaborators, used by tests.
func NewWithDeps(config *types.Config, logger types.Logger, aliases AliasTable, search searchClient, links linkResolver) *Pipeline {
	return &Pipeline{
		config:   config,
		logger:   logger,
		aliases:  aliases,
		search:   search,
		resolver: links,
	}
}

// Compare runs the full pipeline for a free-text product query. Only a
// failed primary search is an error; every other degenerate case (no
// offers, nothing relevant, no known merchants) yields an empty result.
func (p *Pipeline) Compare(ctx context.Context, query string) ([]types.ResolvedOffer, error) {
	start := time.Now()
	p.logger.Infof("Comparing prices for %q", query)

	raw, err := p.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		p.logger.Info("Search returned no offers")
		return []types.ResolvedOffer{}, nil
	}

	normalized := p.normalize(raw, query)
	if len(normalized) == 0 {
		p.logger.Infof("No valid offers among %d raw results", len(raw))
		return []types.ResolvedOffer{}, nil
	}

	ranked := DedupAndRank(normalized, p.config.MaxResults)
	resolved := p.resolver.ResolveAll(ctx, ranked)

	p.logger.Infof("Comparison for %q finished in %v: %d merchants", query, time.Since(start), len(resolved))
	return resolved, nil
}

// normalize filters and converts raw offers in upstream order. Offers
// failing relevance, price validation, or merchant resolution (in strict
// mode) are dropped here.
func (p *Pipeline) normalize(raw []types.RawOffer, query string) []types.NormalizedOffer {
	var offers []types.NormalizedOffer

	for _, item := range raw {
		if !IsRelevant(item.Title, query, p.config.RelevanceThreshold) {
			p.logger.Debugf("Dropping irrelevant offer: %q", item.Title)
			continue
		}

		price, ok := ParsePrice(item.Price)
		if !ok || price <= 0 || price > p.config.MaxPrice {
			p.logger.Debugf("Dropping offer with unusable price %v from %q", item.Price, item.Merchant)
			continue
		}

		key, known := p.aliases.Resolve(item.Merchant)
		if !known {
			if p.config.StrictMerchants {
				p.logger.Debugf("Dropping offer from unknown merchant %q", item.Merchant)
				continue
			}
			key = SyntheticKey(item.Merchant)
			if key == "" {
				continue
			}
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Unknown Product"
		}

		rawLink := item.Link
		if rawLink == "" {
			rawLink = item.DetailURL
		}

		offers = append(offers, types.NormalizedOffer{
			Title:        title,
			Price:        price,
			MerchantName: item.Merchant,
			MerchantKey:  key,
			RawLink:      rawLink,
			DetailURL:    item.DetailURL,
			Image:        item.Image,
		})
	}

	return offers
}

// Package resolver upgrades aggregator-hosted offer links into direct
// merchant purchase URLs, either through the provider's structured detail
// API or by scraping the intermediate page.
package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"pricewatch/internal/types"
	"pricewatch/utils"
)

// MerchantMatcher resolves free-text merchant names to canonical keys and
// lists the known merchant domain fragments. pipeline.AliasTable
// implements it.
type MerchantMatcher interface {
	Resolve(name string) (string, bool)
	Keys() []string
}

// Strategy is one way of finding a direct merchant URL for an offer.
type Strategy interface {
	Resolve(ctx context.Context, offer types.NormalizedOffer) (string, error)
}

// Resolver runs a Strategy over every ranked offer concurrently.
type Resolver struct {
	config   *types.Config
	logger   types.Logger
	strategy Strategy
	limiter  *rate.Limiter
}

// New creates a resolver whose strategy follows config.ResolveMode. Only
// the scrape strategy gets pacing: it targets sites we do not control.
func New(config *types.Config, logger types.Logger, merchants MerchantMatcher) *Resolver {
	r := &Resolver{
		config: config,
		logger: logger,
	}

	if config.ResolveMode == types.ResolveScrape {
		r.strategy = NewScrapeStrategy(config, logger, merchants)
		r.limiter = rate.NewLimiter(rate.Every(config.PacingInterval), 1)
	} else {
		r.strategy = NewStructuredStrategy(config, logger, merchants, utils.NewSingleShotClient(config, logger))
	}

	return r
}

// ResolveAll resolves links for all offers concurrently and returns them
// in the same order they came in, which is the ranked order. Every
// resolution is failure-isolated: an error keeps the offer's original
// link, it never drops the offer or fails the request.
func (r *Resolver) ResolveAll(ctx context.Context, offers []types.NormalizedOffer) []types.ResolvedOffer {
	resolved := make([]types.ResolvedOffer, len(offers))

	g, gctx := errgroup.WithContext(ctx)
	for i, offer := range offers {
		i, offer := i, offer
		g.Go(func() error {
			resolved[i] = types.ResolvedOffer{NormalizedOffer: offer, Link: offer.RawLink}

			if r.limiter != nil {
				if err := r.limiter.Wait(gctx); err != nil {
					return nil
				}
			}

			link, err := r.strategy.Resolve(gctx, offer)
			if err != nil {
				r.logger.Warnf("Link resolution failed for %s, keeping original link: %v", offer.MerchantKey, err)
				return nil
			}
			if link != "" {
				resolved[i].Link = link
			}
			return nil
		})
	}

	// Tasks never return errors, the group is only used as a join point.
	_ = g.Wait()

	return resolved
}

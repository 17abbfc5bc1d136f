package pipeline

import (
	"sort"

	"pricewatch/internal/types"
)

// DedupAndRank keeps the cheapest offer per merchant, sorts the survivors
// by ascending price, and truncates to limit. Exact price ties within a
// merchant keep the offer that was encountered first. The result never
// contains two offers sharing a merchant key.
func DedupAndRank(offers []types.NormalizedOffer, limit int) []types.NormalizedOffer {
	best := make(map[string]types.NormalizedOffer)
	var order []string

	for _, offer := range offers {
		current, seen := best[offer.MerchantKey]
		if !seen {
			best[offer.MerchantKey] = offer
			order = append(order, offer.MerchantKey)
			continue
		}
		if offer.Price < current.Price {
			best[offer.MerchantKey] = offer
		}
	}

	ranked := make([]types.NormalizedOffer, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, best[key])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price < ranked[j].Price
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

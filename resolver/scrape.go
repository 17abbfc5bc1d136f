package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricewatch/internal/types"
	"pricewatch/utils"
)

// absoluteURLPattern matches absolute URLs inside raw page bodies,
// including ones buried in scripts or JSON blobs goquery cannot see.
var absoluteURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+`)

// aggregatorHosts are domain fragments of the search provider itself; a
// link pointing back at them is a redirect, not a merchant page.
var aggregatorHosts = []string{"google.", "gstatic.", "googleusercontent.", "serpapi.com"}

// ScrapeStrategy resolves links by fetching the aggregator's intermediate
// page and scanning it for a URL on a known merchant domain. Used when no
// structured detail API is available for the deployment.
type ScrapeStrategy struct {
	config        *types.Config
	logger        types.Logger
	merchants     MerchantMatcher
	httpClient    *utils.HTTPClient
	browserClient *utils.BrowserClient
}

// NewScrapeStrategy creates the scrape fallback strategy. Page fetches
// are single-shot: a failed scrape falls back to the original link
// instead of retrying.
func NewScrapeStrategy(config *types.Config, logger types.Logger, merchants MerchantMatcher) *ScrapeStrategy {
	return &ScrapeStrategy{
		config:        config,
		logger:        logger,
		merchants:     merchants,
		httpClient:    utils.NewSingleShotClient(config, logger),
		browserClient: utils.NewBrowserClient(config, logger),
	}
}

// Resolve fetches the page behind the offer's raw link and extracts the
// most direct merchant URL it can find. When nothing matches it returns
// the raw link unchanged rather than an error.
func (s *ScrapeStrategy) Resolve(ctx context.Context, offer types.NormalizedOffer) (string, error) {
	if offer.RawLink == "" {
		return "", fmt.Errorf("no link to resolve for %s", offer.MerchantKey)
	}

	html, err := s.getPageContent(ctx, offer.RawLink)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", offer.RawLink, err)
	}

	if link := s.scanAnchors(html); link != "" {
		s.logger.Debugf("Found merchant link in anchors for %s", offer.MerchantKey)
		return link, nil
	}

	if link := s.scanBody(html); link != "" {
		s.logger.Debugf("Found merchant link in page body for %s", offer.MerchantKey)
		return link, nil
	}

	// Resolution failure degrades to the link we already had.
	return offer.RawLink, nil
}

func (s *ScrapeStrategy) getPageContent(ctx context.Context, url string) (string, error) {
	if s.config.UseHeadlessBrowser {
		return s.browserClient.GetPageContent(ctx, url)
	}

	body, err := s.httpClient.Get(ctx, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// scanAnchors looks through anchor elements for an href that leaves the
// aggregator and lands on a known merchant domain.
func (s *ScrapeStrategy) scanAnchors(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, exists := sel.Attr("href")
		if !exists {
			return true
		}

		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http") {
			return true
		}

		if s.isMerchantURL(href) {
			found = href
			return false
		}
		return true
	})

	return found
}

// scanBody regex-scans the raw markup for any absolute merchant URL.
func (s *ScrapeStrategy) scanBody(html string) string {
	for _, candidate := range absoluteURLPattern.FindAllString(html, -1) {
		if s.isMerchantURL(candidate) {
			return candidate
		}
	}
	return ""
}

func (s *ScrapeStrategy) isMerchantURL(candidate string) bool {
	candidateLower := strings.ToLower(candidate)

	for _, host := range aggregatorHosts {
		if strings.Contains(candidateLower, host) {
			return false
		}
	}

	for _, fragment := range s.merchants.Keys() {
		if strings.Contains(candidateLower, fragment) {
			return true
		}
	}

	return false
}

package types

import "time"

// RawOffer is one shopping result as received from the search provider.
// The schema varies across provider configurations, so every field may be
// absent; Price keeps its decoded JSON form (float64, string, or []any)
// until the price parser runs.
type RawOffer struct {
	Title     string
	Price     any
	Merchant  string
	Link      string
	Image     string
	Rating    float64
	DetailURL string
}

// NormalizedOffer is a raw offer that passed relevance, price, and
// merchant checks. Immutable once produced; re-derivation replaces it.
type NormalizedOffer struct {
	Title        string
	Price        float64
	MerchantName string
	MerchantKey  string
	RawLink      string
	DetailURL    string
	Image        string
}

// ResolvedOffer is a normalized offer plus the best purchase link found.
// Link falls back to RawLink when resolution fails.
type ResolvedOffer struct {
	NormalizedOffer
	Link string
}

// SellerRecord is one entry of the structured lookup response.
type SellerRecord struct {
	Name   string
	Price  float64
	Link   string
	Rating float64
}

// OfferView is the JSON shape returned to API clients.
type OfferView struct {
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	PriceFormatted string  `json:"priceFormatted"`
	Source         string  `json:"source"`
	Link           string  `json:"link"`
	Image          string  `json:"image"`
}

// CompareResponse is the body of a successful comparison.
type CompareResponse struct {
	Results []OfferView `json:"results"`
	Total   int         `json:"total"`
}

// MerchantAlias maps a lowercase trigger substring to a canonical
// merchant key. Alias tables are ordered priority lists: more specific
// triggers go before generic ones.
type MerchantAlias struct {
	Trigger string
	Key     string
}

// ResolveMode selects the link resolution strategy for a deployment.
type ResolveMode string

const (
	// ResolveStructured calls the provider's detail API for seller links.
	ResolveStructured ResolveMode = "structured"
	// ResolveScrape fetches the aggregator page and scans it for links.
	ResolveScrape ResolveMode = "scrape"
)

// Config holds the configuration for the comparison pipeline
type Config struct {
	APIKey             string
	SearchBaseURL      string
	Location           string
	Language           string
	Country            string
	GoogleDomain       string
	ResultCount        int
	RelevanceThreshold float64
	MaxPrice           float64
	MaxResults         int
	StrictMerchants    bool
	ResolveMode        ResolveMode
	PacingInterval     time.Duration
	RetryBackoff       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SearchBaseURL:      "https://serpapi.com/search.json",
		Location:           "France",
		Language:           "fr",
		Country:            "fr",
		GoogleDomain:       "google.fr",
		ResultCount:        10,
		RelevanceThreshold: 0.5,
		MaxPrice:           15000,
		MaxResults:         10,
		StrictMerchants:    true,
		ResolveMode:        ResolveStructured,
		PacingInterval:     500 * time.Millisecond,
		RetryBackoff:       1 * time.Second,
		MaxRetries:         3,
		Timeout:            15 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

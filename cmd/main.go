package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pricewatch/internal/types"
	"pricewatch/pipeline"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		queryFlag  = flag.String("query", "", "Product query to compare prices for (required)")
		outputFlag = flag.String("output", "", "Output file path (default: stdout)")
		modeFlag   = flag.String("mode", "structured", "Link resolution mode (structured, scrape)")
		limitFlag  = flag.Int("limit", 10, "Maximum number of merchants in the result")
		threshold  = flag.Float64("threshold", 0.5, "Relevance threshold for title matching")
		maxPrice   = flag.Float64("max-price", 15000, "Maximum accepted price")
		permissive = flag.Bool("permissive", false, "Keep offers from unknown merchants under their raw name")
		pacing     = flag.Duration("pacing", 500*time.Millisecond, "Pacing interval between scrape fetches")
		maxRetries = flag.Int("retries", 3, "Maximum retry attempts for the primary search")
		timeout    = flag.Duration("timeout", 15*time.Second, "Per-request timeout")
		useBrowser = flag.Bool("browser", false, "Use headless browser for scrape fetches")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *queryFlag == "" {
		log.Fatal("The --query flag is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Create configuration
	config := types.DefaultConfig()
	config.APIKey = os.Getenv("SERPAPI_KEY")
	if config.APIKey == "" {
		logger.Fatal("SERPAPI_KEY environment variable is required")
	}
	config.ResolveMode = types.ResolveMode(*modeFlag)
	config.MaxResults = *limitFlag
	config.RelevanceThreshold = *threshold
	config.MaxPrice = *maxPrice
	config.StrictMerchants = !*permissive
	config.PacingInterval = *pacing
	config.MaxRetries = *maxRetries
	config.Timeout = *timeout
	config.UseHeadlessBrowser = *useBrowser

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	startTime := time.Now()
	logger.Infof("Comparing prices for: %s", *queryFlag)

	offers, err := pipeline.New(config, logger).Compare(ctx, *queryFlag)
	if err != nil {
		logger.Fatalf("Comparison failed: %v", err)
	}

	views := pipeline.ToViews(offers)
	response := types.CompareResponse{
		Results: views,
		Total:   len(views),
	}

	// Marshal results to JSON
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	// Output results
	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Comparison completed in %v", time.Since(startTime))
	logger.Infof("Merchants found: %d", len(views))
	for i, view := range views {
		logger.Infof("  %d. %s - %s", i+1, view.Source, view.PriceFormatted)
	}
}

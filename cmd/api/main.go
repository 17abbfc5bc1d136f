package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pricewatch/internal/types"
	"pricewatch/pipeline"
)

// CompareRequest represents the request body for the comparison endpoint
type CompareRequest struct {
	Query string `json:"query"`
}

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger   *logrus.Logger
	config   *types.Config
	pipeline *pipeline.Pipeline
}

// NewServer creates a new API server
func NewServer(config *types.Config, logger *logrus.Logger) *Server {
	return &Server{
		logger:   logger,
		config:   config,
		pipeline: pipeline.New(config, logger),
	}
}

// handleCompare handles the price comparison endpoint
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight requests
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != "POST" {
		s.sendError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		s.sendError(w, http.StatusBadRequest, "Query required", "")
		return
	}

	s.logger.Infof("Compare request received for %q", req.Query)

	// Inbound disconnects do not cancel in-flight upstream calls; each
	// outbound request carries its own timeout instead.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	offers, err := s.pipeline.Compare(ctx, req.Query)
	if err != nil {
		// Compare only fails when the primary search is unavailable;
		// everything else degrades to an empty result.
		s.logger.Errorf("Upstream search failed: %v", err)
		s.sendError(w, http.StatusInternalServerError, "Failed", err.Error())
		return
	}

	views := pipeline.ToViews(offers)
	response := types.CompareResponse{
		Results: views,
		Total:   len(views),
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, statusCode int, message, details string) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// Start starts the API server
func (s *Server) Start(port string) error {
	http.HandleFunc("/compare", s.handleCompare)
	http.HandleFunc("/health", s.handleHealth)

	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /compare - Compare merchant prices for a product query")
	s.logger.Info("  GET  /health  - Health check")

	return http.ListenAndServe(":"+port, nil)
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

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
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.DefaultConfig()
	config.APIKey = os.Getenv("SERPAPI_KEY")
	if config.APIKey == "" {
		logger.Fatal("SERPAPI_KEY environment variable is required")
	}
	if mode := os.Getenv("RESOLVE_MODE"); mode != "" {
		config.ResolveMode = types.ResolveMode(mode)
	}
	if os.Getenv("PERMISSIVE_MERCHANTS") == "true" {
		config.StrictMerchants = false
	}

	serverPort := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		serverPort = envPort
	}

	server := NewServer(config, logger)
	log.Fatal(server.Start(serverPort))
}

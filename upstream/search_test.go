package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/internal/types"
	"pricewatch/utils"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	config := types.DefaultConfig()
	config.APIKey = "test-key"
	config.SearchBaseURL = serverURL
	config.MaxRetries = 0
	config.RetryBackoff = 10 * time.Millisecond
	config.Timeout = 2 * time.Second
	logger := logrus.New()
	return NewClient(config, logger, utils.NewHTTPClient(config, logger))
}

func TestSearch_ExtractsOffers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_shopping", r.URL.Query().Get("engine"))
		assert.Equal(t, "sony wh-1000xm5", r.URL.Query().Get("q"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"shopping_results":[
			{"title":"Sony WH-1000XM5","extracted_price":349.0,"source":"Amazon",
			 "product_link":"https://google.fr/p/1","thumbnail":"https://img/1.jpg","rating":4.7},
			{"title":"Sony WH-1000XM5 Silver","price":"355,00 €","source":"Fnac","link":"https://google.fr/p/2"}]}`))
	}))
	defer server.Close()

	offers, err := testClient(t, server.URL).Search(context.Background(), "sony wh-1000xm5")

	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "Sony WH-1000XM5", offers[0].Title)
	assert.Equal(t, 349.0, offers[0].Price)
	assert.Equal(t, "Amazon", offers[0].Merchant)
	assert.Equal(t, "https://google.fr/p/1", offers[0].Link)
	assert.Equal(t, 4.7, offers[0].Rating)
	// Second entry carries the string-encoded price and the alternate link key.
	assert.Equal(t, "355,00 €", offers[1].Price)
	assert.Equal(t, "https://google.fr/p/2", offers[1].Link)
}

func TestSearch_AlternateListField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"inline_shopping_results":[{"title":"Sony WH-1000XM5","price":"349,00 €","source":"Darty"}]}`))
	}))
	defer server.Close()

	offers, err := testClient(t, server.URL).Search(context.Background(), "sony wh-1000xm5")

	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "Darty", offers[0].Merchant)
}

func TestSearch_MissingListIsZeroOffers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"search_metadata":{"status":"Success"}}`))
	}))
	defer server.Close()

	offers, err := testClient(t, server.URL).Search(context.Background(), "sony wh-1000xm5")

	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestSearch_InvalidJSONIsZeroOffers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	offers, err := testClient(t, server.URL).Search(context.Background(), "sony wh-1000xm5")

	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestSearch_RetryExhaustionIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).Search(context.Background(), "sony wh-1000xm5")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSearch_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"shopping_results":[{"title":"Sony WH-1000XM5","extracted_price":349.0,"source":"Amazon"}]}`))
	}))
	defer server.Close()

	config := types.DefaultConfig()
	config.APIKey = "test-key"
	config.SearchBaseURL = server.URL
	config.MaxRetries = 3
	config.RetryBackoff = 10 * time.Millisecond
	logger := logrus.New()
	client := NewClient(config, logger, utils.NewHTTPClient(config, logger))

	offers, err := client.Search(context.Background(), "sony wh-1000xm5")

	require.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, 3, attempts)
}

package tickerApi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qrenard/patrimoine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllTickers_FollowsPagination(t *testing.T) {
	var baseURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("cursor") == "page2" {
			_, _ = w.Write([]byte(`{
				"results": [
					{"ticker": "MSFT", "name": "Microsoft Corporation", "primary_exchange": "XNAS", "market": "stocks"},
					{"ticker": "AAPL", "name": "Apple duplicate", "primary_exchange": "XNAS", "market": "stocks"}
				]
			}`))
			return
		}

		_, _ = w.Write([]byte(fmt.Sprintf(`{
			"results": [
				{"ticker": "AAPL", "name": "Apple Inc.", "primary_exchange": "XNAS", "market": "stocks"}
			],
			"next_url": "%s/v3/reference/tickers?cursor=page2"
		}`, baseURL)))
	}))
	defer srv.Close()
	baseURL = srv.URL

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.TickerApi.Url = srv.URL
	cfg.API.TickerApi.ApiKey = "test-key"
	cfg.API.TickerApi.PageDelay = time.Millisecond

	tickers, err := New(cfg).GetAllTickers(context.Background())
	require.NoError(t, err)

	// Duplicate AAPL on page two keeps the first entry.
	require.Len(t, tickers, 2)
	assert.Equal(t, "AAPL", tickers[0].Symbol)
	assert.Equal(t, "Apple Inc.", tickers[0].Description)
	assert.Equal(t, "MSFT", tickers[1].Symbol)
}

func TestGetAllTickers_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.TickerApi.Url = srv.URL
	cfg.API.TickerApi.PageDelay = time.Millisecond

	_, err := New(cfg).GetAllTickers(context.Background())
	assert.Error(t, err)
}

func TestGetAllTickers_ContextCancelledBetweenPages(t *testing.T) {
	var baseURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fmt.Sprintf(`{"results": [], "next_url": "%s/v3/reference/tickers?cursor=next"}`, baseURL)))
	}))
	defer srv.Close()
	baseURL = srv.URL

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.TickerApi.Url = srv.URL
	cfg.API.TickerApi.PageDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := New(cfg).GetAllTickers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

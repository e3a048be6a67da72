package quoteApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/externalApi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, handler http.HandlerFunc) *QuoteApi {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.Timeout = 5 * time.Second
	cfg.API.QuoteApi.Url = srv.URL

	return New(cfg)
}

func TestGetQuote(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "CW8.PA", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [{
					"symbol": "CW8.PA",
					"shortName": "AMUNDI MSCI WR",
					"longName": "Amundi MSCI World UCITS ETF",
					"regularMarketPrice": 461.23,
					"marketState": "REGULAR"
				}],
				"error": null
			}
		}`))
	})

	quote, err := api.GetQuote(context.Background(), "CW8.PA")
	require.NoError(t, err)

	assert.Equal(t, "CW8.PA", quote.Symbol)
	assert.Equal(t, "Amundi MSCI World UCITS ETF", quote.LongName)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("461.23")))
}

func TestGetQuote_UnknownSymbol(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse": {"result": [], "error": null}}`))
	})

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuote_ServerError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := api.GetQuote(context.Background(), "CW8.PA")
	assert.Error(t, err)
}

func TestGetUSDToEUR(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR=X", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"quoteResponse": {
				"result": [{"symbol": "EUR=X", "regularMarketPrice": 0.9214}],
				"error": null
			}
		}`))
	})

	rate := api.GetUSDToEUR(context.Background())
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9214")))
}

func TestGetUSDToEUR_FallsBackOnError(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rate := api.GetUSDToEUR(context.Background())
	assert.True(t, rate.Equal(FallbackUSDToEUR))
}

func TestGetUSDToEUR_FallsBackOnZeroPrice(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse": {"result": [{"symbol": "EUR=X"}], "error": null}}`))
	})

	rate := api.GetUSDToEUR(context.Background())
	assert.True(t, rate.Equal(FallbackUSDToEUR))
}

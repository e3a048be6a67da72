package tickerApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/model/tickerModel"
	"github.com/qrenard/patrimoine/utils"
)

type TickerApi struct {
	client    *resty.Client
	apiKey    string
	pageDelay time.Duration
}

func New(cfg *config.Config) *TickerApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TickerApi.Url)
	return &TickerApi{
		client:    client,
		apiKey:    cfg.API.TickerApi.ApiKey,
		pageDelay: cfg.API.TickerApi.PageDelay,
	}
}

// GetAllTickers walks the provider's paginated catalog following
// next_url links, pausing pageDelay between pages to respect the
// provider quota. Symbols seen twice keep their first entry.
func (a *TickerApi) GetAllTickers(ctx context.Context) ([]tickerModel.Ticker, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start TickerApi.GetAllTickers request", slog.String("rqID", rqID))

	seen := make(map[string]struct{})
	tickers := make([]tickerModel.Ticker, 0)

	url := "/v3/reference/tickers?market=stocks&active=false&order=asc&sort=ticker&limit=1000"

	for url != "" {
		page, err := a.getPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Results {
			if _, ok := seen[raw.Ticker]; ok {
				continue
			}
			seen[raw.Ticker] = struct{}{}
			tickers = append(tickers, tickerModel.Ticker{
				Symbol:      raw.Ticker,
				Description: raw.Name,
				Exchange:    raw.PrimaryExchange,
				Market:      raw.Market,
			})
		}

		slog.Debug("ticker catalog page fetched", slog.String("rqID", rqID), slog.Int("total", len(tickers)))

		// next_url is absolute when present
		url = page.NextURL
		if url != "" {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.pageDelay):
			}
		}
	}

	slog.Debug("TickerApi.GetAllTickers request complete", slog.String("rqID", rqID), slog.Int("count", len(tickers)))

	return tickers, nil
}

func (a *TickerApi) getPage(ctx context.Context, url string) (tickerModel.RawCatalogPage, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+a.apiKey).
		Get(url)

	if err != nil {
		slog.Error("error while dialing TickerApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return tickerModel.RawCatalogPage{}, err
	}

	if resp.IsError() {
		slog.Error("TickerApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return tickerModel.RawCatalogPage{}, fmt.Errorf("ticker api status %d", resp.StatusCode())
	}

	page := tickerModel.RawCatalogPage{}
	err = json.Unmarshal(resp.Body(), &page)
	if err != nil {
		slog.Error("can't unmarshall response into tickerModel.RawCatalogPage", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return tickerModel.RawCatalogPage{}, err
	}

	return page, nil
}

package quoteApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/externalApi"
	"github.com/qrenard/patrimoine/internal/model/quoteModel"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

// fxSymbol is the provider's symbol for the USD to EUR rate.
const fxSymbol = "EUR=X"

// FallbackUSDToEUR is returned when the FX lookup fails for any
// reason: the conversion degrades instead of the request failing.
var FallbackUSDToEUR = decimal.NewFromFloat(0.93)

type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)
	return &QuoteApi{client: client}
}

// GetQuote returns price and display names for one symbol. Callers are
// expected to absorb per-symbol failures; a batch must not abort
// because one lookup failed.
func (a *QuoteApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v7/finance/quote"
	params := map[string]string{
		"symbols": symbol,
		"fields":  "symbol,shortName,longName,regularMarketPrice,marketState",
	}

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing QuoteApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, err
	}

	if resp.IsError() {
		slog.Error("QuoteApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, fmt.Errorf("quote api status %d", resp.StatusCode())
	}

	raw := quoteModel.RawQuoteResponse{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawQuoteResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return quoteModel.Quote{}, err
	}

	if len(raw.QuoteResponse.Result) == 0 {
		slog.Warn("symbol not found in QuoteApi", slog.String("rqID", rqID), slog.String("symbol", symbol))
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	r := raw.QuoteResponse.Result[0]

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID))

	return quoteModel.Quote{
		Symbol:    r.Symbol,
		ShortName: r.ShortName,
		LongName:  r.LongName,
		Price:     r.RegularMarketPrice,
	}, nil
}

// GetUSDToEUR returns the current USD to EUR rate. It never surfaces a
// hard failure: any error falls back to FallbackUSDToEUR.
func (a *QuoteApi) GetUSDToEUR(ctx context.Context) decimal.Decimal {
	rqID := utils.GetRequestIDFromCtx(ctx)

	quote, err := a.GetQuote(ctx, fxSymbol)
	if err != nil {
		slog.Warn("fx rate lookup failed, using fallback", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("fallback", FallbackUSDToEUR.String()))
		return FallbackUSDToEUR
	}

	if quote.Price.IsZero() {
		slog.Warn("fx rate missing in quote, using fallback", slog.String("rqID", rqID), slog.String("fallback", FallbackUSDToEUR.String()))
		return FallbackUSDToEUR
	}

	return quote.Price
}

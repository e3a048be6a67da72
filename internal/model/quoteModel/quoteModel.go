package quoteModel

import "github.com/shopspring/decimal"

// Quote is what the market-data provider returns for one symbol.
// A zero Price means the provider had no usable price.
type Quote struct {
	Symbol    string
	ShortName string
	LongName  string
	Price     decimal.Decimal
}

// DisplayName prefers the long name, then the short name, then the
// symbol itself.
func (q Quote) DisplayName() string {
	if q.LongName != "" {
		return q.LongName
	}
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.Symbol
}

// RawQuoteResponse mirrors the provider's quote payload.
type RawQuoteResponse struct {
	QuoteResponse struct {
		Result []RawQuote `json:"result"`
		Error  any        `json:"error"`
	} `json:"quoteResponse"`
}

type RawQuote struct {
	Symbol             string          `json:"symbol"`
	ShortName          string          `json:"shortName"`
	LongName           string          `json:"longName"`
	RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
	MarketState        string          `json:"marketState"`
}

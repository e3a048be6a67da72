package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the per (envelope, symbol) aggregate derived from orders.
// Monetary figures are kept in the position's native currency; EUR
// conversion happens in the envelope roll-up.
type Position struct {
	Symbol       string          `json:"symbol"`
	LongName     string          `json:"longName"`
	ShortName    string          `json:"shortName"`
	Currency     string          `json:"currency"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	DiffValue    decimal.Decimal `json:"diffValue"`
	DiffPercent  decimal.Decimal `json:"diffPercent"`
}

// EnvelopeValuation rolls one envelope up in EUR: cash plus the
// converted current value of every surviving position.
type EnvelopeValuation struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Cash          decimal.Decimal `json:"cash"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	DiffValue     decimal.Decimal `json:"diffValue"`
	DiffPercent   decimal.Decimal `json:"diffPercent"`
	Positions     []Position      `json:"positions"`
}

type AccountValuation struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	TotalValue decimal.Decimal     `json:"totalValue"`
	Types      []EnvelopeValuation `json:"types"`
}

type HistoryPoint struct {
	Date       time.Time       `json:"date"`
	TotalValue decimal.Decimal `json:"total_value"`
}

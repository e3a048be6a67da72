package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

type Order struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	AccountName     string          `json:"account_name,omitempty"`
	AccountTypeID   int64           `json:"account_type_id"`
	AccountTypeName string          `json:"account_type,omitempty"`
	Symbol          string          `json:"symbol"`
	Side            string          `json:"side"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	Date            time.Time       `json:"date"`
}

// OrderWithConversion is an order annotated with EUR-converted figures
// computed with the current USD to EUR rate.
type OrderWithConversion struct {
	Order
	PriceEUR decimal.Decimal `json:"priceEUR"`
	Total    decimal.Decimal `json:"total"`
	TotalEUR decimal.Decimal `json:"totalEUR"`
}

// OrderImportRow is one raw row of an order import. Quantity, price
// and date arrive as text and are parsed tolerantly.
type OrderImportRow struct {
	AccountID     int64  `json:"account_id"`
	AccountTypeID int64  `json:"account_type_id"`
	Symbol        string `json:"symbol"`
	Side          string `json:"type"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	Date          string `json:"date"`
	Currency      string `json:"currency"`
}

// ImportReport sums up a bulk order import: rows that failed validation
// are reported individually, valid rows are stored all-or-nothing.
type ImportReport struct {
	Imported []Order       `json:"imported"`
	Rejected []RejectedRow `json:"rejected,omitempty"`
}

type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

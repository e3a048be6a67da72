package model

import "github.com/shopspring/decimal"

type AccountType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Types []AccountType `json:"types"`
}

// Envelope is one (account, account type) pairing: a cash balance plus
// the orders booked against it.
type Envelope struct {
	AccountID int64
	TypeID    int64
	TypeName  string
	Cash      decimal.Decimal
	Orders    []Order
}

// AccountLedger is the raw aggregation input for one account.
type AccountLedger struct {
	ID        int64
	Name      string
	Envelopes []Envelope
}

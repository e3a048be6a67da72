package dbConverter

import (
	"database/sql"
	"testing"
	"time"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/dbModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d(s), Valid: true}
}

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func ni(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: true}
}

func TestGroupLedgerRows(t *testing.T) {
	dt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := []dbModel.LedgerRow{
		{
			AccountID: 1, AccountName: "Boursorama",
			TypeID: ni(3), TypeName: ns("PEA"), Cash: nd("100"),
			OrderID: ni(10), Symbol: ns(" cw8.pa "), Side: ns("buy"),
			Quantity: nd("2"), Price: nd("400"), Currency: ns("EUR"),
			DtCreate: sql.NullTime{Time: dt, Valid: true},
		},
		{
			AccountID: 1, AccountName: "Boursorama",
			TypeID: ni(3), TypeName: ns("PEA"), Cash: nd("100"),
			OrderID: ni(11), Symbol: ns("VOO"), Side: ns("sell"),
			Quantity: nd("1"), Price: nd("350"), Currency: ns("USD"),
			DtCreate: sql.NullTime{Time: dt, Valid: true},
		},
		{
			// Envelope without orders.
			AccountID: 1, AccountName: "Boursorama",
			TypeID: ni(5), TypeName: ns("CTO"), Cash: nd("50"),
		},
		{
			// Account without envelopes.
			AccountID: 2, AccountName: "Fortuneo",
		},
	}

	ledgers := GroupLedgerRows(rows)

	require.Len(t, ledgers, 2)

	first := ledgers[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Boursorama", first.Name)
	require.Len(t, first.Envelopes, 2)

	pea := first.Envelopes[0]
	assert.Equal(t, int64(3), pea.TypeID)
	assert.Equal(t, "PEA", pea.TypeName)
	assert.True(t, pea.Cash.Equal(d("100")))
	require.Len(t, pea.Orders, 2)

	// Symbol normalized to uppercase without padding.
	assert.Equal(t, "CW8.PA", pea.Orders[0].Symbol)
	assert.Equal(t, model.SideBuy, pea.Orders[0].Side)
	assert.True(t, pea.Orders[0].Quantity.Equal(d("2")))
	assert.Equal(t, dt, pea.Orders[0].Date)

	assert.Equal(t, "VOO", pea.Orders[1].Symbol)
	assert.Equal(t, model.CurrencyUSD, pea.Orders[1].Currency)

	cto := first.Envelopes[1]
	assert.Equal(t, "CTO", cto.TypeName)
	assert.Empty(t, cto.Orders)

	second := ledgers[1]
	assert.Equal(t, "Fortuneo", second.Name)
	assert.Empty(t, second.Envelopes)
}

func TestGroupLedgerRows_MissingCurrencyDefaultsToEUR(t *testing.T) {
	rows := []dbModel.LedgerRow{
		{
			AccountID: 1, AccountName: "Main",
			TypeID: ni(1), TypeName: ns("PEA"), Cash: nd("0"),
			OrderID: ni(1), Symbol: ns("CW8.PA"), Side: ns("buy"),
			Quantity: nd("1"), Price: nd("400"),
		},
	}

	ledgers := GroupLedgerRows(rows)

	require.Len(t, ledgers, 1)
	require.Len(t, ledgers[0].Envelopes, 1)
	require.Len(t, ledgers[0].Envelopes[0].Orders, 1)
	assert.Equal(t, model.CurrencyEUR, ledgers[0].Envelopes[0].Orders[0].Currency)
}

func TestConvertOrder(t *testing.T) {
	dt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	order := ConvertOrder(dbModel.Order{
		ID:              7,
		AccountID:       1,
		AccountName:     "Main",
		AccountTypeID:   3,
		AccountTypeName: "PEA",
		Symbol:          "CW8.PA",
		Side:            "buy",
		Quantity:        d("2"),
		Price:           d("400"),
		Currency:        "EUR",
		DtCreate:        dt,
	})

	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, "Main", order.AccountName)
	assert.Equal(t, "PEA", order.AccountTypeName)
	assert.Equal(t, dt, order.Date)
}

package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerate(t *testing.T) {
	accounts := []model.AccountValuation{
		{
			ID:         1,
			Name:       "Boursorama",
			TotalValue: decimal.RequireFromString("5620"),
			Types: []model.EnvelopeValuation{
				{
					ID:         3,
					Name:       "PEA",
					Cash:       decimal.RequireFromString("100"),
					TotalValue: decimal.RequireFromString("5620"),
					Positions: []model.Position{
						{
							Symbol:       "CW8.PA",
							LongName:     "Amundi MSCI World",
							Quantity:     decimal.RequireFromString("12"),
							CurrentValue: decimal.RequireFromString("5520"),
							Currency:     model.CurrencyEUR,
						},
					},
				},
			},
		},
		{ID: 2, Name: "Fortuneo"},
	}

	fileBytes, ext, err := New().Generate(context.Background(), accounts)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "1. Boursorama")
	assert.Contains(t, sheets, "2. Fortuneo")
	assert.NotContains(t, sheets, "Sheet1")

	name, err := f.GetCellValue("1. Boursorama", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Boursorama", name)

	envelope, err := f.GetCellValue("1. Boursorama", "A3")
	require.NoError(t, err)
	assert.Equal(t, "PEA", envelope)

	symbol, err := f.GetCellValue("1. Boursorama", "A6")
	require.NoError(t, err)
	assert.Equal(t, "CW8.PA", symbol)
}

func TestGenerate_NoAccounts(t *testing.T) {
	_, _, err := New().Generate(context.Background(), nil)
	assert.Error(t, err)
}

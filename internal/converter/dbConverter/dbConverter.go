package dbConverter

import (
	"strings"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/dbModel"
)

func ConvertOrder(dbOrder dbModel.Order) model.Order {
	return model.Order{
		ID:              dbOrder.ID,
		AccountID:       dbOrder.AccountID,
		AccountName:     dbOrder.AccountName,
		AccountTypeID:   dbOrder.AccountTypeID,
		AccountTypeName: dbOrder.AccountTypeName,
		Symbol:          dbOrder.Symbol,
		Side:            dbOrder.Side,
		Quantity:        dbOrder.Quantity,
		Price:           dbOrder.Price,
		Currency:        dbOrder.Currency,
		Date:            dbOrder.DtCreate,
	}
}

func ConvertHistoryPoint(dbPoint dbModel.HistoryPoint) model.HistoryPoint {
	return model.HistoryPoint{
		Date:       dbPoint.Date,
		TotalValue: dbPoint.TotalValue,
	}
}

func ConvertAccountType(dbType dbModel.AccountType) model.AccountType {
	return model.AccountType{
		ID:   dbType.ID,
		Name: dbType.Name,
	}
}

// GroupLedgerRows folds the flat accounts × envelopes × orders join
// into per-account ledgers. Rows must be ordered by account then type;
// envelope and order columns may be NULL.
func GroupLedgerRows(rows []dbModel.LedgerRow) []model.AccountLedger {
	ledgers := make([]model.AccountLedger, 0)
	accountIdx := make(map[int64]int)
	envelopeIdx := make(map[[2]int64]int)

	for _, row := range rows {
		ai, ok := accountIdx[row.AccountID]
		if !ok {
			ledgers = append(ledgers, model.AccountLedger{
				ID:        row.AccountID,
				Name:      row.AccountName,
				Envelopes: make([]model.Envelope, 0),
			})
			ai = len(ledgers) - 1
			accountIdx[row.AccountID] = ai
		}

		if !row.TypeID.Valid {
			continue
		}

		envKey := [2]int64{row.AccountID, row.TypeID.Int64}
		ei, ok := envelopeIdx[envKey]
		if !ok {
			ledgers[ai].Envelopes = append(ledgers[ai].Envelopes, model.Envelope{
				AccountID: row.AccountID,
				TypeID:    row.TypeID.Int64,
				TypeName:  row.TypeName.String,
				Cash:      row.Cash.Decimal,
				Orders:    make([]model.Order, 0),
			})
			ei = len(ledgers[ai].Envelopes) - 1
			envelopeIdx[envKey] = ei
		}

		if !row.OrderID.Valid || !row.Symbol.Valid {
			continue
		}

		ledgers[ai].Envelopes[ei].Orders = append(ledgers[ai].Envelopes[ei].Orders, model.Order{
			ID:            row.OrderID.Int64,
			AccountID:     row.AccountID,
			AccountTypeID: row.TypeID.Int64,
			Symbol:        strings.ToUpper(strings.TrimSpace(row.Symbol.String)),
			Side:          row.Side.String,
			Quantity:      row.Quantity.Decimal,
			Price:         row.Price.Decimal,
			Currency:      currencyOrDefault(row.Currency.String),
			Date:          row.DtCreate.Time,
		})
	}

	return ledgers
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return model.CurrencyEUR
	}
	return currency
}

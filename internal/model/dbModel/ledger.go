package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Account struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Order struct {
	ID              int64           `db:"id"`
	AccountID       int64           `db:"account_id"`
	AccountName     string          `db:"account_name"`
	AccountTypeID   int64           `db:"account_type_id"`
	AccountTypeName string          `db:"account_type_name"`
	Symbol          string          `db:"symbol"`
	Side            string          `db:"side"`
	Quantity        decimal.Decimal `db:"quantity"`
	Price           decimal.Decimal `db:"price"`
	Currency        string          `db:"currency"`
	DtCreate        time.Time       `db:"dt_create"`
}

// LedgerRow is one row of the accounts × envelopes × orders join that
// feeds the aggregator. Envelope and order columns are nullable: an
// account may have no envelopes yet and an envelope no orders.
type LedgerRow struct {
	AccountID   int64               `db:"account_id"`
	AccountName string              `db:"account_name"`
	TypeID      sql.NullInt64       `db:"type_id"`
	TypeName    sql.NullString      `db:"type_name"`
	Cash        decimal.NullDecimal `db:"cash"`
	OrderID     sql.NullInt64       `db:"order_id"`
	Symbol      sql.NullString      `db:"symbol"`
	Side        sql.NullString      `db:"side"`
	Quantity    decimal.NullDecimal `db:"quantity"`
	Price       decimal.NullDecimal `db:"price"`
	Currency    sql.NullString      `db:"currency"`
	DtCreate    sql.NullTime        `db:"dt_create"`
}

type HistoryPoint struct {
	Date       time.Time       `db:"date"`
	TotalValue decimal.Decimal `db:"total_value"`
}

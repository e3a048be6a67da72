package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/converter/dbConverter"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/dbModel"
	"github.com/qrenard/patrimoine/internal/model/tickerModel"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

func (r *Postgres) ListAccountTypes(ctx context.Context) (types []model.AccountType, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListAccountTypes"
	query := `SELECT id, name FROM account_types ORDER BY id`

	slog.Debug("ListAccountTypes start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListAccountTypes failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListAccountTypes completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t dbModel.AccountType
		if err = rows.StructScan(&t); err != nil {
			return nil, err
		}
		types = append(types, dbConverter.ConvertAccountType(t))
	}

	return types, rows.Err()
}

func (r *Postgres) CreateAccount(ctx context.Context, name string, typeIDs []int64) (accountID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CreateAccount"

	slog.Debug("CreateAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name), slog.Any("typeIDs", typeIDs))
	defer func() {
		if err != nil {
			slog.Error("CreateAccount failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateAccount completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
		}
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `INSERT INTO accounts(name) VALUES($1) RETURNING id`, name).Scan(&accountID)
	if err != nil {
		return 0, err
	}

	for _, typeID := range typeIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO account_account_types(account_id, account_type_id) VALUES($1, $2)`,
			accountID, typeID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				err = ErrAlreadyExists
			}
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return accountID, nil
}

func (r *Postgres) GetAccount(ctx context.Context, accountID int64) (account model.Account, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetAccount"
	query := `
		SELECT a.id AS account_id, a.name AS account_name, at.id AS type_id, at.name AS type_name
		FROM accounts a
		LEFT JOIN account_account_types act ON a.id = act.account_id
		LEFT JOIN account_types at ON act.account_type_id = at.id
		WHERE a.id = $1
		ORDER BY at.id
		`

	slog.Debug("GetAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		if err != nil {
			slog.Error("GetAccount failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetAccount completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return model.Account{}, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			typeID   sql.NullInt64
			typeName sql.NullString
		)
		if err = rows.Scan(&account.ID, &account.Name, &typeID, &typeName); err != nil {
			return model.Account{}, err
		}
		found = true
		if typeID.Valid {
			account.Types = append(account.Types, model.AccountType{ID: typeID.Int64, Name: typeName.String})
		}
	}
	if err = rows.Err(); err != nil {
		return model.Account{}, err
	}

	if !found {
		err = ErrNotFound
		return model.Account{}, err
	}

	return account, nil
}

func (r *Postgres) ListAccounts(ctx context.Context) (accounts []model.Account, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListAccounts"
	query := `
		SELECT a.id AS account_id, a.name AS account_name, at.id AS type_id, at.name AS type_name
		FROM accounts a
		LEFT JOIN account_account_types act ON a.id = act.account_id
		LEFT JOIN account_types at ON act.account_type_id = at.id
		ORDER BY a.name, a.id, at.id
		`

	slog.Debug("ListAccounts start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListAccounts failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListAccounts completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := make(map[int64]int)
	for rows.Next() {
		var (
			accountID   int64
			accountName string
			typeID      sql.NullInt64
			typeName    sql.NullString
		)
		if err = rows.Scan(&accountID, &accountName, &typeID, &typeName); err != nil {
			return nil, err
		}

		i, ok := idx[accountID]
		if !ok {
			accounts = append(accounts, model.Account{ID: accountID, Name: accountName})
			i = len(accounts) - 1
			idx[accountID] = i
		}
		if typeID.Valid {
			accounts[i].Types = append(accounts[i].Types, model.AccountType{ID: typeID.Int64, Name: typeName.String})
		}
	}

	return accounts, rows.Err()
}

func (r *Postgres) DeleteAccount(ctx context.Context, accountID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteAccount"
	query := `DELETE FROM accounts WHERE id = $1`

	slog.Debug("DeleteAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		if err != nil {
			slog.Error("DeleteAccount failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteAccount completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	return nil
}

// ListAccountsFull returns the accounts × envelopes × orders join
// grouped into per-account ledgers. Pass accountID = 0 for all
// accounts. Orders cascade on envelope deletes, so the join never
// returns orphan order rows.
func (r *Postgres) ListAccountsFull(ctx context.Context, accountID int64) (ledgers []model.AccountLedger, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListAccountsFull"
	query := `
		SELECT
			a.id AS account_id,
			a.name AS account_name,
			at.id AS type_id,
			at.name AS type_name,
			act.cash AS cash,
			o.id AS order_id,
			o.symbol AS symbol,
			o.side AS side,
			o.quantity AS quantity,
			o.price AS price,
			o.currency AS currency,
			o.dt_create AS dt_create
		FROM accounts a
		LEFT JOIN account_account_types act ON a.id = act.account_id
		LEFT JOIN account_types at ON act.account_type_id = at.id
		LEFT JOIN orders o
			ON o.account_id = a.id
			AND o.account_type_id = at.id
		WHERE ($1 = 0 OR a.id = $1)
		ORDER BY a.id, at.id, o.dt_create DESC
		`

	slog.Debug("ListAccountsFull start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		if err != nil {
			slog.Error("ListAccountsFull failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListAccountsFull completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ledgerRows := make([]dbModel.LedgerRow, 0)
	for rows.Next() {
		var row dbModel.LedgerRow
		if err = rows.StructScan(&row); err != nil {
			return nil, err
		}
		ledgerRows = append(ledgerRows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return dbConverter.GroupLedgerRows(ledgerRows), nil
}

func (r *Postgres) UpdateEnvelopeCash(ctx context.Context, accountID, typeID int64, cash decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateEnvelopeCash"
	query := `
		UPDATE account_account_types
		SET cash = $3
		WHERE account_id = $1 AND account_type_id = $2
		`

	slog.Debug("UpdateEnvelopeCash start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID), slog.Int64("typeID", typeID))
	defer func() {
		if err != nil {
			slog.Error("UpdateEnvelopeCash failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateEnvelopeCash completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, accountID, typeID, cash)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	return nil
}

const orderColumns = `
	o.id, o.account_id, a.name AS account_name, o.account_type_id, at.name AS account_type_name,
	o.symbol, o.side, o.quantity, o.price, o.currency, o.dt_create`

func (r *Postgres) getOrder(ctx context.Context, orderID int64) (model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN accounts a ON o.account_id = a.id
		JOIN account_types at ON o.account_type_id = at.id
		WHERE o.id = $1
		`

	var dbOrder dbModel.Order
	err := r.db.QueryRowxContext(ctx, query, orderID).StructScan(&dbOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrNotFound
		}
		return model.Order{}, err
	}

	return dbConverter.ConvertOrder(dbOrder), nil
}

func (r *Postgres) InsertOrder(ctx context.Context, order model.Order) (created model.Order, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertOrder"
	query := `
		INSERT INTO orders(account_id, account_type_id, symbol, side, quantity, price, currency, dt_create)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
		`

	slog.Debug("InsertOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", order.Symbol))
	defer func() {
		if err != nil {
			slog.Error("InsertOrder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertOrder completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("orderID", created.ID))
		}
	}()

	var orderID int64
	err = r.db.QueryRowContext(
		ctx,
		query,
		order.AccountID,
		order.AccountTypeID,
		order.Symbol,
		order.Side,
		order.Quantity,
		order.Price,
		order.Currency,
		order.Date,
	).Scan(&orderID)
	if err != nil {
		return model.Order{}, err
	}

	return r.getOrder(ctx, orderID)
}

func (r *Postgres) UpdateOrder(ctx context.Context, orderID int64, order model.Order) (updated model.Order, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateOrder"
	query := `
		UPDATE orders
		SET account_id = $1, account_type_id = $2, symbol = $3, side = $4,
			quantity = $5, price = $6, currency = $7, dt_create = $8
		WHERE id = $9
		`

	slog.Debug("UpdateOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("orderID", orderID))
	defer func() {
		if err != nil {
			slog.Error("UpdateOrder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateOrder completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.db.ExecContext(
		ctx,
		query,
		order.AccountID,
		order.AccountTypeID,
		order.Symbol,
		order.Side,
		order.Quantity,
		order.Price,
		order.Currency,
		order.Date,
		orderID,
	)
	if err != nil {
		return model.Order{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Order{}, err
	}
	if affected == 0 {
		err = ErrNotFound
		return model.Order{}, err
	}

	return r.getOrder(ctx, orderID)
}

func (r *Postgres) DeleteOrder(ctx context.Context, orderID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteOrder"
	query := `DELETE FROM orders WHERE id = $1`

	slog.Debug("DeleteOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("orderID", orderID))
	defer func() {
		if err != nil {
			slog.Error("DeleteOrder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteOrder completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.db.ExecContext(ctx, query, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}

	return nil
}

// BulkInsertOrders stores a validated import batch in one multi-row
// INSERT: the whole batch lands or none of it does.
func (r *Postgres) BulkInsertOrders(ctx context.Context, orders []model.Order) (created []model.Order, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.BulkInsertOrders"

	slog.Debug("BulkInsertOrders start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(orders)))
	defer func() {
		if err != nil {
			slog.Error("BulkInsertOrders failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("BulkInsertOrders completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if len(orders) == 0 {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`INSERT INTO orders(account_id, account_type_id, symbol, side, quantity, price, currency, dt_create) VALUES `)

	args := make([]any, 0, len(orders)*8)
	for i, order := range orders {
		args = append(args, order.AccountID, order.AccountTypeID, order.Symbol, order.Side, order.Quantity, order.Price, order.Currency, order.Date)

		start := i*8 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			start, start+1, start+2, start+3, start+4, start+5, start+6, start+7,
		))

		if i < len(orders)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(" RETURNING id")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0, len(orders))
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	created = make([]model.Order, 0, len(ids))
	for _, id := range ids {
		order, getErr := r.getOrder(ctx, id)
		if getErr != nil {
			err = getErr
			return nil, err
		}
		created = append(created, order)
	}

	return created, nil
}

// ListOrders returns orders newest first, joined with account and
// envelope names. Zero filter values mean no filtering.
func (r *Postgres) ListOrders(ctx context.Context, accountID, typeID int64) (orders []model.Order, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListOrders"
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN accounts a ON o.account_id = a.id
		JOIN account_types at ON o.account_type_id = at.id
		WHERE ($1 = 0 OR o.account_id = $1)
		AND ($2 = 0 OR o.account_type_id = $2)
		ORDER BY o.dt_create DESC
		`

	slog.Debug("ListOrders start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID), slog.Int64("typeID", typeID))
	defer func() {
		if err != nil {
			slog.Error("ListOrders failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListOrders completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query, accountID, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var dbOrder dbModel.Order
		if err = rows.StructScan(&dbOrder); err != nil {
			return nil, err
		}
		orders = append(orders, dbConverter.ConvertOrder(dbOrder))
	}

	return orders, rows.Err()
}

// UpsertHistoryPoint is a single-statement upsert keyed by calendar
// date: the uniqueness constraint makes concurrent runs last-write-win
// instead of duplicating rows.
func (r *Postgres) UpsertHistoryPoint(ctx context.Context, date time.Time, totalValue decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertHistoryPoint"
	query := `
		INSERT INTO portfolio_history(date, total_value)
		VALUES($1, $2)
		ON CONFLICT (date) DO UPDATE SET total_value = EXCLUDED.total_value
		`

	slog.Debug("UpsertHistoryPoint start", slog.String("rqID", rqID), slog.String("op", op), slog.Time("date", date))
	defer func() {
		if err != nil {
			slog.Error("UpsertHistoryPoint failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertHistoryPoint completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.db.ExecContext(ctx, query, date.Format("2006-01-02"), totalValue)
	return err
}

func (r *Postgres) BulkUpsertHistoryPoints(ctx context.Context, points []model.HistoryPoint) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.BulkUpsertHistoryPoints"

	slog.Debug("BulkUpsertHistoryPoints start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(points)))
	defer func() {
		if err != nil {
			slog.Error("BulkUpsertHistoryPoints failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("BulkUpsertHistoryPoints completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if len(points) == 0 {
		return nil
	}

	sb := strings.Builder{}
	sb.WriteString(`INSERT INTO portfolio_history(date, total_value) VALUES `)

	args := make([]any, 0, len(points)*2)
	for i, point := range points {
		args = append(args, point.Date.Format("2006-01-02"), point.TotalValue)

		start := i*2 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d)", start, start+1))

		if i < len(points)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(` ON CONFLICT (date) DO UPDATE SET total_value = EXCLUDED.total_value`)

	_, err = r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *Postgres) ListHistory(ctx context.Context) (points []model.HistoryPoint, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListHistory"
	query := `SELECT date, total_value FROM portfolio_history ORDER BY date ASC`

	slog.Debug("ListHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListHistory failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListHistory completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var point dbModel.HistoryPoint
		if err = rows.StructScan(&point); err != nil {
			return nil, err
		}
		points = append(points, dbConverter.ConvertHistoryPoint(point))
	}

	return points, rows.Err()
}

// UpsertTickers refreshes the reference catalog in chunks to stay
// under the Postgres parameter limit.
func (r *Postgres) UpsertTickers(ctx context.Context, tickers []tickerModel.Ticker) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpsertTickers"

	slog.Debug("UpsertTickers start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(tickers)))
	defer func() {
		if err != nil {
			slog.Error("UpsertTickers failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertTickers completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	const chunkSize = 1000

	for start := 0; start < len(tickers); start += chunkSize {
		end := min(start+chunkSize, len(tickers))
		if err = r.upsertTickersChunk(ctx, tickers[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (r *Postgres) upsertTickersChunk(ctx context.Context, tickers []tickerModel.Ticker) error {
	sb := strings.Builder{}
	sb.WriteString(`INSERT INTO tickers(symbol, description, exchange, market, updated_at) VALUES `)

	args := make([]any, 0, len(tickers)*4)
	for i, ticker := range tickers {
		args = append(args, ticker.Symbol, ticker.Description, ticker.Exchange, ticker.Market)

		start := i*4 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, NOW())", start, start+1, start+2, start+3))

		if i < len(tickers)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(`
		ON CONFLICT (symbol) DO UPDATE SET
			description = EXCLUDED.description,
			exchange = EXCLUDED.exchange,
			market = EXCLUDED.market,
			updated_at = NOW();
	`)

	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qrenard/patrimoine/data/repository"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

var orderDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	time.RFC3339,
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// defaultCurrency mirrors the historical detection rule: an explicit
// currency wins, otherwise symbols containing "USD" are treated as
// dollar-priced and everything else as euro-priced.
func defaultCurrency(currency, symbol string) string {
	if currency != "" {
		return currency
	}
	if strings.Contains(strings.ToUpper(symbol), model.CurrencyUSD) {
		return model.CurrencyUSD
	}
	return model.CurrencyEUR
}

func validateOrder(order model.Order) error {
	if order.AccountID == 0 || order.AccountTypeID == 0 {
		return fmt.Errorf("%w: account_id and account_type_id are required", service.ErrValidation)
	}
	if normalizeSymbol(order.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", service.ErrValidation)
	}
	if order.Side != model.SideBuy && order.Side != model.SideSell {
		return fmt.Errorf("%w: side must be buy or sell", service.ErrValidation)
	}
	if !order.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", service.ErrValidation)
	}
	if !order.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", service.ErrValidation)
	}
	if order.Currency != "" && order.Currency != model.CurrencyEUR && order.Currency != model.CurrencyUSD {
		return fmt.Errorf("%w: currency must be EUR or USD", service.ErrValidation)
	}
	return nil
}

func prepareOrder(order model.Order) model.Order {
	order.Symbol = normalizeSymbol(order.Symbol)
	order.Currency = defaultCurrency(order.Currency, order.Symbol)
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	return order
}

func (s *PortfolioService) CreateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateOrder"

	slog.Debug("CreateOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", order.Symbol))
	defer func() {
		slog.Debug("CreateOrder finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err := validateOrder(order); err != nil {
		return model.Order{}, err
	}

	created, err := s.repo.InsertOrder(ctx, prepareOrder(order))
	if err != nil {
		slog.Error("got error from repo.InsertOrder", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Order{}, err
	}

	return created, nil
}

// UpdateOrder is a full replace: every field of the stored order takes
// the incoming value.
func (s *PortfolioService) UpdateOrder(ctx context.Context, orderID int64, order model.Order) (model.Order, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateOrder"

	slog.Debug("UpdateOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("orderID", orderID))
	defer func() {
		slog.Debug("UpdateOrder finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err := validateOrder(order); err != nil {
		return model.Order{}, err
	}

	updated, err := s.repo.UpdateOrder(ctx, orderID, prepareOrder(order))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Order{}, service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateOrder", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Order{}, err
	}

	return updated, nil
}

func (s *PortfolioService) DeleteOrder(ctx context.Context, orderID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteOrder"

	slog.Debug("DeleteOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("orderID", orderID))
	defer func() {
		slog.Debug("DeleteOrder finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.DeleteOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteOrder", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// ListOrders returns orders newest first, each annotated with
// EUR-converted price and total using the current rate. Zero filters
// mean no filtering.
func (s *PortfolioService) ListOrders(ctx context.Context, accountID, typeID int64) ([]model.OrderWithConversion, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListOrders"

	slog.Debug("ListOrders start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID), slog.Int64("typeID", typeID))
	defer func() {
		slog.Debug("ListOrders finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	orders, err := s.repo.ListOrders(ctx, accountID, typeID)
	if err != nil {
		slog.Error("got error from repo.ListOrders", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	usdToEur := s.getUSDToEUR(ctx)

	converted := make([]model.OrderWithConversion, 0, len(orders))
	for _, order := range orders {
		converted = append(converted, convertOrder(order, usdToEur))
	}

	return converted, nil
}

func convertOrder(order model.Order, usdToEur decimal.Decimal) model.OrderWithConversion {
	total := order.Price.Mul(order.Quantity).Round(2)

	priceEUR := order.Price
	totalEUR := total
	if order.Currency == model.CurrencyUSD {
		priceEUR = order.Price.Mul(usdToEur).Round(2)
		totalEUR = total.Mul(usdToEur).Round(2)
	}

	return model.OrderWithConversion{
		Order:    order,
		PriceEUR: priceEUR,
		Total:    total,
		TotalEUR: totalEUR,
	}
}

// ImportOrders validates rows individually and stores the survivors in
// one all-or-nothing bulk insert: row-level tolerance, batch-level
// atomicity.
func (s *PortfolioService) ImportOrders(ctx context.Context, rows []model.OrderImportRow) (model.ImportReport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportOrders"

	slog.Debug("ImportOrders start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))
	defer func() {
		slog.Debug("ImportOrders finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if len(rows) == 0 {
		return model.ImportReport{}, fmt.Errorf("%w: no orders provided", service.ErrValidation)
	}

	report := model.ImportReport{}
	orders := make([]model.Order, 0, len(rows))

	for i, row := range rows {
		order, err := parseImportRow(row)
		if err != nil {
			report.Rejected = append(report.Rejected, model.RejectedRow{Line: i + 1, Reason: err.Error()})
			continue
		}
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return report, fmt.Errorf("%w: no valid orders in import", service.ErrValidation)
	}

	created, err := s.repo.BulkInsertOrders(ctx, orders)
	if err != nil {
		slog.Error("got error from repo.BulkInsertOrders", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ImportReport{}, err
	}

	report.Imported = created

	return report, nil
}

func parseImportRow(row model.OrderImportRow) (model.Order, error) {
	quantity, err := parseDecimal(row.Quantity)
	if err != nil {
		return model.Order{}, fmt.Errorf("invalid quantity %q", row.Quantity)
	}

	price, err := parseDecimal(row.Price)
	if err != nil {
		return model.Order{}, fmt.Errorf("invalid price %q", row.Price)
	}

	side := model.SideBuy
	if strings.EqualFold(strings.TrimSpace(row.Side), model.SideSell) {
		side = model.SideSell
	}

	date := time.Now()
	if strings.TrimSpace(row.Date) != "" {
		date, err = parseFlexibleDate(row.Date)
		if err != nil {
			return model.Order{}, fmt.Errorf("invalid date %q", row.Date)
		}
	}

	order := model.Order{
		AccountID:     row.AccountID,
		AccountTypeID: row.AccountTypeID,
		Symbol:        row.Symbol,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
		Currency:      row.Currency,
		Date:          date,
	}

	if err := validateOrder(order); err != nil {
		return model.Order{}, err
	}

	return prepareOrder(order), nil
}

// parseDecimal tolerates decimal commas and stray currency symbols in
// imported numbers.
func parseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		default:
			return -1
		}
	}, strings.TrimSpace(raw))

	if cleaned == "" {
		return decimal.Decimal{}, errors.New("empty number")
	}

	return decimal.NewFromString(cleaned)
}

// parseFlexibleDate accepts ISO dates, French dd/mm/yyyy dates and
// RFC3339 timestamps; a trailing time-of-day after a space is ignored.
func parseFlexibleDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	candidate := raw
	if i := strings.IndexByte(raw, ' '); i > 0 {
		candidate = raw[:i]
	}

	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, nil
		}
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

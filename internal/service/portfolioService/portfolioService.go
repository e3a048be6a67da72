package portfolioService

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/externalApi"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/quoteModel"
	"github.com/qrenard/patrimoine/internal/model/tickerModel"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
	GetUSDToEUR(ctx context.Context) decimal.Decimal
}

type TickerApi interface {
	GetAllTickers(ctx context.Context) ([]tickerModel.Ticker, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
	SetQuote(ctx context.Context, quote quoteModel.Quote) error
	GetFxRate(ctx context.Context) (decimal.Decimal, error)
	SetFxRate(ctx context.Context, rate decimal.Decimal) error
}

type Repository interface {
	ListAccountTypes(ctx context.Context) ([]model.AccountType, error)
	CreateAccount(ctx context.Context, name string, typeIDs []int64) (int64, error)
	GetAccount(ctx context.Context, accountID int64) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	DeleteAccount(ctx context.Context, accountID int64) error
	ListAccountsFull(ctx context.Context, accountID int64) ([]model.AccountLedger, error)
	UpdateEnvelopeCash(ctx context.Context, accountID, typeID int64, cash decimal.Decimal) error
	InsertOrder(ctx context.Context, order model.Order) (model.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, order model.Order) (model.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	BulkInsertOrders(ctx context.Context, orders []model.Order) ([]model.Order, error)
	ListOrders(ctx context.Context, accountID, typeID int64) ([]model.Order, error)
	UpsertHistoryPoint(ctx context.Context, date time.Time, totalValue decimal.Decimal) error
	BulkUpsertHistoryPoints(ctx context.Context, points []model.HistoryPoint) error
	ListHistory(ctx context.Context) ([]model.HistoryPoint, error)
	UpsertTickers(ctx context.Context, tickers []tickerModel.Ticker) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, accounts []model.AccountValuation) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	cfg          *config.Config
	repo         Repository
	cache        Cache
	quoteApi     QuoteApi
	tickerApi    TickerApi
	reportGen    ReportGenerator
	cloudStorage CloudStorage
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	quoteApi QuoteApi,
	tickerApi TickerApi,
	reportGen ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		quoteApi:     quoteApi,
		tickerApi:    tickerApi,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
	}
}

var oneHundred = decimal.NewFromInt(100)

// GetAccountsFull is the valuation tree: every account with its
// envelopes, derived positions and roll-up totals. accountID = 0 means
// the whole portfolio. Quote failures degrade per symbol, the FX
// lookup degrades to its fallback: only a ledger read failure is a
// hard error.
func (s *PortfolioService) GetAccountsFull(ctx context.Context, accountID int64) (accounts []model.AccountValuation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetAccountsFull"

	slog.Debug("GetAccountsFull start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("GetAccountsFull finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	ledgers, err := s.repo.ListAccountsFull(ctx, accountID)
	if err != nil {
		slog.Error("got error from repo.ListAccountsFull", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := s.getQuotes(ctx, uniqueSymbols(ledgers))
	usdToEur := s.getUSDToEUR(ctx)

	accounts = make([]model.AccountValuation, 0, len(ledgers))
	for _, ledger := range ledgers {
		accounts = append(accounts, aggregateAccount(ledger, quotes, usdToEur))
	}

	return accounts, nil
}

// uniqueSymbols collects the distinct symbol set across all ledgers so
// the gateway is hit once per symbol per aggregation, never per order.
func uniqueSymbols(ledgers []model.AccountLedger) []string {
	seen := make(map[string]struct{})
	symbols := make([]string, 0)

	for _, ledger := range ledgers {
		for _, envelope := range ledger.Envelopes {
			for _, order := range envelope.Orders {
				if _, ok := seen[order.Symbol]; ok {
					continue
				}
				seen[order.Symbol] = struct{}{}
				symbols = append(symbols, order.Symbol)
			}
		}
	}

	sort.Strings(symbols)
	return symbols
}

// getQuotes resolves all symbols concurrently and joins before
// returning. A failed lookup yields a quote with no price so the
// position falls back to its average cost.
func (s *PortfolioService) getQuotes(ctx context.Context, symbols []string) map[string]quoteModel.Quote {
	quotes := make(map[string]quoteModel.Quote, len(symbols))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func() {
			defer wg.Done()

			quote, err := s.getQuote(ctx, symbol)
			if err != nil {
				quote = quoteModel.Quote{Symbol: symbol}
			}

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
		}()
	}

	wg.Wait()

	return quotes
}

func (s *PortfolioService) getQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getQuote"

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	quote, err = s.quoteApi.GetQuote(ctx, symbol)
	if err != nil {
		slog.Warn("quote lookup failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		return quoteModel.Quote{}, err
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote, nil
}

func (s *PortfolioService) getUSDToEUR(ctx context.Context) decimal.Decimal {
	rate, err := s.cache.GetFxRate(ctx)
	if err == nil && !rate.IsZero() {
		return rate
	}

	rate = s.quoteApi.GetUSDToEUR(ctx)

	go s.cache.SetFxRate(context.WithoutCancel(ctx), rate)

	return rate
}

// aggregateAccount derives the valuation tree for one account. It is a
// pure function of its inputs: same ledger, quotes and rate always
// produce the same tree.
func aggregateAccount(ledger model.AccountLedger, quotes map[string]quoteModel.Quote, usdToEur decimal.Decimal) model.AccountValuation {
	account := model.AccountValuation{
		ID:    ledger.ID,
		Name:  ledger.Name,
		Types: make([]model.EnvelopeValuation, 0, len(ledger.Envelopes)),
	}

	for _, envelope := range ledger.Envelopes {
		valuation := aggregateEnvelope(envelope, quotes, usdToEur)
		account.TotalValue = account.TotalValue.Add(valuation.TotalValue)
		account.Types = append(account.Types, valuation)
	}

	return account
}

func aggregateEnvelope(envelope model.Envelope, quotes map[string]quoteModel.Quote, usdToEur decimal.Decimal) model.EnvelopeValuation {
	valuation := model.EnvelopeValuation{
		ID:        envelope.TypeID,
		Name:      envelope.TypeName,
		Cash:      envelope.Cash,
		Positions: make([]model.Position, 0),
	}

	// Commutative accumulation: order of orders does not matter.
	accumulators := make(map[string]*model.Position)
	for _, order := range envelope.Orders {
		position, ok := accumulators[order.Symbol]
		if !ok {
			position = &model.Position{
				Symbol:   order.Symbol,
				Currency: order.Currency,
			}
			accumulators[order.Symbol] = position
		}

		amount := order.Quantity.Mul(order.Price)
		switch order.Side {
		case model.SideBuy:
			position.Quantity = position.Quantity.Add(order.Quantity)
			position.TotalCost = position.TotalCost.Add(amount)
		case model.SideSell:
			position.Quantity = position.Quantity.Sub(order.Quantity)
			position.TotalCost = position.TotalCost.Sub(amount)
		}
	}

	totalValue := envelope.Cash

	for _, position := range sortedPositions(accumulators) {
		// Fully or over-sold positions drop out even when their net
		// cost is non-zero.
		if !position.Quantity.IsPositive() {
			continue
		}

		quote := quotes[position.Symbol]

		position.LongName = quote.DisplayName()
		position.ShortName = position.Symbol
		if quote.ShortName != "" {
			position.ShortName = quote.ShortName
		}

		position.AvgPrice = position.TotalCost.Div(position.Quantity)

		// Missing price: substitute the average cost, so the position
		// shows a zero gain instead of failing the whole tree.
		position.CurrentPrice = quote.Price
		if position.CurrentPrice.IsZero() {
			position.CurrentPrice = position.AvgPrice
		}

		position.CurrentValue = position.CurrentPrice.Mul(position.Quantity)
		position.DiffValue = position.CurrentValue.Sub(position.TotalCost)
		// Zero cost basis (e.g. a gifted position) reports 0%.
		if !position.TotalCost.IsZero() {
			position.DiffPercent = position.DiffValue.Div(position.TotalCost).Mul(oneHundred)
		}

		totalValue = totalValue.Add(toEUR(position.CurrentValue, position.Currency, usdToEur))
		valuation.TotalInvested = valuation.TotalInvested.Add(toEUR(position.TotalCost, position.Currency, usdToEur))
		valuation.Positions = append(valuation.Positions, position)
	}

	valuation.TotalValue = totalValue

	invested := valuation.TotalInvested.Add(envelope.Cash)
	valuation.DiffValue = valuation.TotalValue.Sub(invested)
	if !invested.IsZero() {
		valuation.DiffPercent = valuation.DiffValue.Div(invested).Mul(oneHundred)
	}

	return valuation
}

func sortedPositions(accumulators map[string]*model.Position) []model.Position {
	positions := make([]model.Position, 0, len(accumulators))
	for _, position := range accumulators {
		positions = append(positions, *position)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
	return positions
}

// toEUR converts a USD amount with the single per-request rate; EUR
// amounts pass through. Historical orders use today's rate on purpose.
func toEUR(amount decimal.Decimal, currency string, usdToEur decimal.Decimal) decimal.Decimal {
	if currency == model.CurrencyUSD {
		return amount.Mul(usdToEur)
	}
	return amount
}

// PortfolioTotal sums account totals; it feeds history sampling and
// the dashboard pie chart.
func PortfolioTotal(accounts []model.AccountValuation) decimal.Decimal {
	total := decimal.Decimal{}
	for _, account := range accounts {
		total = total.Add(account.TotalValue)
	}
	return total
}

// GetStockQuote resolves one symbol for direct display, cache first.
func (s *PortfolioService) GetStockQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetStockQuote"

	slog.Debug("GetStockQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetStockQuote finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	quote, err := s.getQuote(ctx, normalizeSymbol(symbol))
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			return quoteModel.Quote{}, service.ErrNotFound
		}
		return quoteModel.Quote{}, err
	}

	return quote, nil
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/quoteModel"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	accounts       []model.Account
	account        model.Account
	accountErr     error
	valuations     []model.AccountValuation
	valuationsErr  error
	createdOrder   model.Order
	orderErr       error
	history        []model.HistoryPoint
	quote          quoteModel.Quote
	quoteErr       error
	cashAccountID  int64
	cashTypeID     int64
	cash           decimal.Decimal
	deletedOrderID int64
}

func (s *stubService) ListAccountTypes(ctx context.Context) ([]model.AccountType, error) {
	return []model.AccountType{{ID: 1, Name: "PEA"}}, nil
}

func (s *stubService) CreateAccount(ctx context.Context, name string, typeIDs []int64) (model.Account, error) {
	if s.accountErr != nil {
		return model.Account{}, s.accountErr
	}
	return model.Account{ID: 1, Name: name}, nil
}

func (s *stubService) GetAccount(ctx context.Context, accountID int64) (model.Account, error) {
	return s.account, s.accountErr
}

func (s *stubService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accounts, s.accountErr
}

func (s *stubService) DeleteAccount(ctx context.Context, accountID int64) error {
	return s.accountErr
}

func (s *stubService) GetAccountsFull(ctx context.Context, accountID int64) ([]model.AccountValuation, error) {
	return s.valuations, s.valuationsErr
}

func (s *stubService) UpdateEnvelopeCash(ctx context.Context, accountID, typeID int64, cash decimal.Decimal) error {
	s.cashAccountID = accountID
	s.cashTypeID = typeID
	s.cash = cash
	return s.accountErr
}

func (s *stubService) CreateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	s.createdOrder = order
	return order, s.orderErr
}

func (s *stubService) UpdateOrder(ctx context.Context, orderID int64, order model.Order) (model.Order, error) {
	return order, s.orderErr
}

func (s *stubService) DeleteOrder(ctx context.Context, orderID int64) error {
	s.deletedOrderID = orderID
	return s.orderErr
}

func (s *stubService) ListOrders(ctx context.Context, accountID, typeID int64) ([]model.OrderWithConversion, error) {
	return nil, s.orderErr
}

func (s *stubService) ImportOrders(ctx context.Context, rows []model.OrderImportRow) (model.ImportReport, error) {
	return model.ImportReport{}, s.orderErr
}

func (s *stubService) ListHistory(ctx context.Context) ([]model.HistoryPoint, error) {
	return s.history, nil
}

func (s *stubService) RecordPortfolioValue(ctx context.Context) error {
	return nil
}

func (s *stubService) ImportHistory(ctx context.Context, csvText string) (int, error) {
	return 0, service.ErrValidation
}

func (s *stubService) GenerateReport(ctx context.Context) ([]byte, string, error) {
	return []byte("report"), ".xlsx", nil
}

func (s *stubService) GetStockQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	return s.quote, s.quoteErr
}

func (s *stubService) RefreshTickers(ctx context.Context) error {
	return nil
}

func newTestRouter(stub *stubService) http.Handler {
	return newRouter(NewController(stub))
}

func TestGetAccountsFull(t *testing.T) {
	stub := &stubService{
		valuations: []model.AccountValuation{
			{ID: 1, Name: "Main", TotalValue: decimal.RequireFromString("1234.56")},
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/full", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []model.AccountValuation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Main", got[0].Name)
}

func TestCreateAccount_BadJSON(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccount_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: service.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "validation", err: service.ErrValidation, wantStatus: http.StatusBadRequest},
		{name: "internal", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubService{accountErr: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/accounts/7", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetAccount_InvalidID(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEnvelopeCash(t *testing.T) {
	stub := &stubService{}
	router := newTestRouter(stub)

	body := `{"account_id": 1, "type_id": 3, "cash": "250.50"}`
	req := httptest.NewRequest(http.MethodPut, "/api/accounts/cash", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), stub.cashAccountID)
	assert.Equal(t, int64(3), stub.cashTypeID)
	assert.True(t, stub.cash.Equal(decimal.RequireFromString("250.50")))
}

func TestCreateOrder(t *testing.T) {
	stub := &stubService{}
	router := newTestRouter(stub)

	body := `{"account_id": 1, "account_type_id": 3, "symbol": "CW8.PA", "side": "buy", "quantity": "2", "price": "400"}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CW8.PA", stub.createdOrder.Symbol)
}

func TestDeleteOrder(t *testing.T) {
	stub := &stubService{}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), stub.deletedOrderID)
}

func TestDownloadReport(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "report", w.Body.String())
}

func TestGetStockQuote(t *testing.T) {
	stub := &stubService{
		quote: quoteModel.Quote{Symbol: "CW8.PA", LongName: "Amundi MSCI World", Price: decimal.RequireFromString("461.23")},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/stock/CW8.PA", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "CW8.PA", got["symbol"])
	assert.Equal(t, "Amundi MSCI World", got["longName"])
}

func TestImportHistory_ValidationError(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/history/import", strings.NewReader(`{"csv": ""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

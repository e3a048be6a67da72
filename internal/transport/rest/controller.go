package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/quoteModel"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

type PortfolioService interface {
	ListAccountTypes(ctx context.Context) ([]model.AccountType, error)
	CreateAccount(ctx context.Context, name string, typeIDs []int64) (model.Account, error)
	GetAccount(ctx context.Context, accountID int64) (model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	DeleteAccount(ctx context.Context, accountID int64) error
	GetAccountsFull(ctx context.Context, accountID int64) ([]model.AccountValuation, error)
	UpdateEnvelopeCash(ctx context.Context, accountID, typeID int64, cash decimal.Decimal) error
	CreateOrder(ctx context.Context, order model.Order) (model.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, order model.Order) (model.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	ListOrders(ctx context.Context, accountID, typeID int64) ([]model.OrderWithConversion, error)
	ImportOrders(ctx context.Context, rows []model.OrderImportRow) (model.ImportReport, error)
	ListHistory(ctx context.Context) ([]model.HistoryPoint, error)
	RecordPortfolioValue(ctx context.Context) error
	ImportHistory(ctx context.Context, csvText string) (int, error)
	GenerateReport(ctx context.Context) ([]byte, string, error)
	GetStockQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
	RefreshTickers(ctx context.Context) error
}

type Controller struct {
	portfolioService PortfolioService
}

func NewController(portfolioService PortfolioService) *Controller {
	return &Controller{portfolioService: portfolioService}
}

func (ctrl *Controller) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", slog.String("err", err.Error()))
	}
}

func (ctrl *Controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	rqID := utils.GetRequestIDFromCtx(r.Context())

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("rqID", rqID), slog.String("path", r.URL.Path), slog.String("err", err.Error()))
	}

	ctrl.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}

func queryID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// --- accounts ---

func (ctrl *Controller) ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	types, err := ctrl.portfolioService.ListAccountTypes(r.Context())
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, types)
}

type createAccountRequest struct {
	Name           string  `json:"name"`
	AccountTypeIDs []int64 `json:"account_type_ids"`
}

func (ctrl *Controller) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	account, err := ctrl.portfolioService.CreateAccount(r.Context(), req.Name, req.AccountTypeIDs)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, account)
}

func (ctrl *Controller) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := ctrl.portfolioService.ListAccounts(r.Context())
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, accounts)
}

func (ctrl *Controller) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	account, err := ctrl.portfolioService.GetAccount(r.Context(), accountID)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, account)
}

func (ctrl *Controller) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	if err := ctrl.portfolioService.DeleteAccount(r.Context(), accountID); err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetAccountsFull returns the valuation tree. It degrades per symbol
// on quote failures and only errors when the ledger itself cannot be
// read.
func (ctrl *Controller) GetAccountsFull(w http.ResponseWriter, r *http.Request) {
	accounts, err := ctrl.portfolioService.GetAccountsFull(r.Context(), queryID(r, "account_id"))
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, accounts)
}

type updateCashRequest struct {
	AccountID int64           `json:"account_id"`
	TypeID    int64           `json:"type_id"`
	Cash      decimal.Decimal `json:"cash"`
}

func (ctrl *Controller) UpdateEnvelopeCash(w http.ResponseWriter, r *http.Request) {
	var req updateCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	if err := ctrl.portfolioService.UpdateEnvelopeCash(r.Context(), req.AccountID, req.TypeID, req.Cash); err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, map[string]any{"success": true, "cash": req.Cash})
}

// --- orders ---

func (ctrl *Controller) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := ctrl.portfolioService.ListOrders(r.Context(), queryID(r, "account_id"), queryID(r, "type_id"))
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, orders)
}

func (ctrl *Controller) ListOrdersByEnvelope(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	typeID, err := pathID(r, "typeID")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	orders, err := ctrl.portfolioService.ListOrders(r.Context(), accountID, typeID)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, orders)
}

func (ctrl *Controller) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var order model.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	created, err := ctrl.portfolioService.CreateOrder(r.Context(), order)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, created)
}

func (ctrl *Controller) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	var order model.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	updated, err := ctrl.portfolioService.UpdateOrder(r.Context(), orderID, order)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, updated)
}

func (ctrl *Controller) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	if err := ctrl.portfolioService.DeleteOrder(r.Context(), orderID); err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (ctrl *Controller) ImportOrders(w http.ResponseWriter, r *http.Request) {
	var rows []model.OrderImportRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	report, err := ctrl.portfolioService.ImportOrders(r.Context(), rows)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, report)
}

// --- portfolio ---

func (ctrl *Controller) ListHistory(w http.ResponseWriter, r *http.Request) {
	points, err := ctrl.portfolioService.ListHistory(r.Context())
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, points)
}

func (ctrl *Controller) SampleHistory(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.portfolioService.RecordPortfolioValue(r.Context()); err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type importHistoryRequest struct {
	CSV string `json:"csv"`
}

func (ctrl *Controller) ImportHistory(w http.ResponseWriter, r *http.Request) {
	var req importHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctrl.writeError(w, r, fmt.Errorf("%w: invalid json body", service.ErrValidation))
		return
	}

	imported, err := ctrl.portfolioService.ImportHistory(r.Context(), req.CSV)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("%d rows imported", imported)})
}

func (ctrl *Controller) DownloadReport(w http.ResponseWriter, r *http.Request) {
	fileBytes, fileExtension, err := ctrl.portfolioService.GenerateReport(r.Context())
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("patrimoine_%s%s", time.Now().Format("2006-01-02"), fileExtension)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fileBytes)
}

// --- stock & tickers ---

func (ctrl *Controller) GetStockQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		ctrl.writeError(w, r, fmt.Errorf("%w: symbol is required", service.ErrValidation))
		return
	}

	quote, err := ctrl.portfolioService.GetStockQuote(r.Context(), symbol)
	if err != nil {
		ctrl.writeError(w, r, err)
		return
	}

	ctrl.writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    quote.Symbol,
		"price":     quote.Price,
		"longName":  quote.LongName,
		"shortName": quote.ShortName,
	})
}

func (ctrl *Controller) RefreshTickers(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.portfolioService.RefreshTickers(r.Context()); err != nil {
		ctrl.writeError(w, r, err)
		return
	}
	ctrl.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

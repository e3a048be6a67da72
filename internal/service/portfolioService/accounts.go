package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qrenard/patrimoine/data/repository"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
)

func (s *PortfolioService) ListAccountTypes(ctx context.Context) ([]model.AccountType, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListAccountTypes"

	slog.Debug("ListAccountTypes start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ListAccountTypes finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	types, err := s.repo.ListAccountTypes(ctx)
	if err != nil {
		slog.Error("got error from repo.ListAccountTypes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return types, nil
}

// CreateAccount creates an account with its envelopes in one
// transaction: an account always owns a nonempty envelope set.
func (s *PortfolioService) CreateAccount(ctx context.Context, name string, typeIDs []int64) (model.Account, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateAccount"

	slog.Debug("CreateAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		slog.Debug("CreateAccount finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, fmt.Errorf("%w: account name is required", service.ErrValidation)
	}
	if len(typeIDs) == 0 {
		return model.Account{}, fmt.Errorf("%w: at least one account type is required", service.ErrValidation)
	}

	accountID, err := s.repo.CreateAccount(ctx, name, typeIDs)
	if err != nil {
		slog.Error("got error from repo.CreateAccount", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Account{}, err
	}

	return s.repo.GetAccount(ctx, accountID)
}

func (s *PortfolioService) GetAccount(ctx context.Context, accountID int64) (model.Account, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetAccount"

	slog.Debug("GetAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("GetAccount finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Account{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetAccount", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Account{}, err
	}

	return account, nil
}

func (s *PortfolioService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListAccounts"

	slog.Debug("ListAccounts start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ListAccounts finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		slog.Error("got error from repo.ListAccounts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return accounts, nil
}

// DeleteAccount cascades to envelopes and their orders at the storage
// layer.
func (s *PortfolioService) DeleteAccount(ctx context.Context, accountID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteAccount"

	slog.Debug("DeleteAccount start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID))
	defer func() {
		slog.Debug("DeleteAccount finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err := s.repo.DeleteAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteAccount", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// UpdateEnvelopeCash is a plain last-write-wins overwrite: concurrent
// updates for the same envelope are an accepted race.
func (s *PortfolioService) UpdateEnvelopeCash(ctx context.Context, accountID, typeID int64, cash decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateEnvelopeCash"

	slog.Debug("UpdateEnvelopeCash start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("accountID", accountID), slog.Int64("typeID", typeID))
	defer func() {
		slog.Debug("UpdateEnvelopeCash finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if accountID == 0 || typeID == 0 {
		return fmt.Errorf("%w: account_id and type_id are required", service.ErrValidation)
	}

	err := s.repo.UpdateEnvelopeCash(ctx, accountID, typeID, cash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateEnvelopeCash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

package portfolioService

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/qrenard/patrimoine/utils"
)

// RecordPortfolioValue samples the whole portfolio and upserts the
// total under today's date. Running it twice on one date overwrites
// the earlier value. It is wired to the daily schedule and to the
// manual sampling endpoint.
func (s *PortfolioService) RecordPortfolioValue(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RecordPortfolioValue"

	slog.Debug("RecordPortfolioValue start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RecordPortfolioValue finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	accounts, err := s.GetAccountsFull(ctx, 0)
	if err != nil {
		slog.Error("got error from GetAccountsFull", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	total := PortfolioTotal(accounts)

	err = s.repo.UpsertHistoryPoint(ctx, time.Now(), total)
	if err != nil {
		slog.Error("got error from repo.UpsertHistoryPoint", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("portfolio value recorded", slog.String("rqID", rqID), slog.String("total", total.String()))

	return nil
}

func (s *PortfolioService) ListHistory(ctx context.Context) ([]model.HistoryPoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListHistory"

	slog.Debug("ListHistory start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ListHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	points, err := s.repo.ListHistory(ctx)
	if err != nil {
		slog.Error("got error from repo.ListHistory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return points, nil
}

// ImportHistory parses CSV text with date and total_value columns,
// keeps the last value per date and bulk-upserts the result. Rows that
// fail to parse are dropped.
func (s *PortfolioService) ImportHistory(ctx context.Context, csvText string) (imported int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ImportHistory"

	slog.Debug("ImportHistory start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ImportHistory finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if strings.TrimSpace(csvText) == "" {
		return 0, fmt.Errorf("%w: no csv provided", service.ErrValidation)
	}

	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: csv parsing failed: %s", service.ErrValidation, err)
	}

	// Last value wins on duplicate dates, inside the file too.
	lastPerDate := make(map[string]model.HistoryPoint)
	order := make([]string, 0, len(records))

	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(record[0]), "date") {
			continue
		}

		date, dateErr := parseFlexibleDate(record[0])
		if dateErr != nil {
			continue
		}

		value, valueErr := parseDecimal(record[1])
		if valueErr != nil {
			continue
		}

		key := date.Format("2006-01-02")
		if _, ok := lastPerDate[key]; !ok {
			order = append(order, key)
		}
		lastPerDate[key] = model.HistoryPoint{Date: date, TotalValue: value}
	}

	if len(lastPerDate) == 0 {
		return 0, fmt.Errorf("%w: no valid rows to import", service.ErrValidation)
	}

	points := make([]model.HistoryPoint, 0, len(lastPerDate))
	for _, key := range order {
		points = append(points, lastPerDate[key])
	}

	err = s.repo.BulkUpsertHistoryPoints(ctx, points)
	if err != nil {
		slog.Error("got error from repo.BulkUpsertHistoryPoints", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return len(points), nil
}

// RefreshTickers downloads the full reference catalog and upserts it.
// Wired to the monthly schedule and the manual refresh endpoint.
func (s *PortfolioService) RefreshTickers(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshTickers"

	slog.Debug("RefreshTickers start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshTickers finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	tickers, err := s.tickerApi.GetAllTickers(ctx)
	if err != nil {
		slog.Error("got error from tickerApi.GetAllTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(tickers) == 0 {
		slog.Warn("ticker catalog came back empty, keeping current data", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	err = s.repo.UpsertTickers(ctx, tickers)
	if err != nil {
		slog.Error("got error from repo.UpsertTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("ticker catalog refreshed", slog.String("rqID", rqID), slog.Int("count", len(tickers)))

	return nil
}

// GenerateReport renders the current valuation tree to a spreadsheet.
func (s *PortfolioService) GenerateReport(ctx context.Context) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	accounts, err := s.GetAccountsFull(ctx, 0)
	if err != nil {
		return nil, "", err
	}

	return s.reportGen.Generate(ctx, accounts)
}

// BackupReport generates the report, uploads it to cloud storage and
// prunes expired uploads. Wired to the monthly backup schedule.
func (s *PortfolioService) BackupReport(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.BackupReport"

	slog.Debug("BackupReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("BackupReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	fileBytes, fileExtension, err := s.GenerateReport(ctx)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("patrimoine_%s%s", time.Now().Format("2006-01-02"), fileExtension)

	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("link", link))

	if err := s.cloudStorage.DeleteOldFiles(ctx); err != nil {
		slog.Error("got error from cloudStorage.DeleteOldFiles", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return nil
}

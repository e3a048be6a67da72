package portfolioService

import (
	"context"
	"testing"
	"time"

	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/internal/model/tickerModel"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportHistory(t *testing.T) {
	repo := &fakeRepo{}
	srv := newTestService(repo, &fakeQuoteApi{})

	csvText := "date,total_value\n" +
		"2024-01-01,1000.50\n" +
		"02/01/2024,1100\n" +
		"2024-01-01,1005\n" +
		"not-a-date,50\n" +
		"2024-01-03,not-a-number\n"

	imported, err := srv.ImportHistory(context.Background(), csvText)
	require.NoError(t, err)

	// Two distinct dates survive; duplicate 2024-01-01 keeps the last value.
	assert.Equal(t, 2, imported)
	require.Len(t, repo.bulkPoints, 2)

	assert.Equal(t, "2024-01-01", repo.bulkPoints[0].Date.Format("2006-01-02"))
	assertDecimal(t, "1005", repo.bulkPoints[0].TotalValue)
	assert.Equal(t, "2024-01-02", repo.bulkPoints[1].Date.Format("2006-01-02"))
	assertDecimal(t, "1100", repo.bulkPoints[1].TotalValue)
}

func TestImportHistory_EmptyInput(t *testing.T) {
	srv := newTestService(&fakeRepo{}, &fakeQuoteApi{})

	_, err := srv.ImportHistory(context.Background(), "   ")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestImportHistory_NoValidRows(t *testing.T) {
	srv := newTestService(&fakeRepo{}, &fakeQuoteApi{})

	_, err := srv.ImportHistory(context.Background(), "date,total_value\nfoo,bar\n")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestRecordPortfolioValue(t *testing.T) {
	repo := &fakeRepo{
		ledgers: []model.AccountLedger{
			{ID: 1, Envelopes: []model.Envelope{{TypeID: 1, Cash: d("100")}}},
			{ID: 2, Envelopes: []model.Envelope{{TypeID: 1, Cash: d("250")}}},
		},
	}
	srv := newTestService(repo, &fakeQuoteApi{})

	err := srv.RecordPortfolioValue(context.Background())
	require.NoError(t, err)

	assertDecimal(t, "350", repo.upsertedTotal)
	assert.WithinDuration(t, time.Now(), repo.upsertedDate, time.Minute)
	assert.Equal(t, int64(0), repo.listFullAccountID)
}

func TestRefreshTickers(t *testing.T) {
	repo := &fakeRepo{}
	tickerApi := &fakeTickerApi{
		tickers: []tickerModel.Ticker{
			{Symbol: "AAPL", Description: "Apple Inc.", Exchange: "XNAS"},
			{Symbol: "MSFT", Description: "Microsoft Corporation", Exchange: "XNAS"},
		},
	}
	srv := New(&config.Config{}, repo, &fakeCache{}, &fakeQuoteApi{}, tickerApi, nil, nil)

	err := srv.RefreshTickers(context.Background())
	require.NoError(t, err)

	assert.Len(t, repo.upsertedTickers, 2)
}

func TestRefreshTickers_EmptyCatalogKeepsCurrentData(t *testing.T) {
	repo := &fakeRepo{}
	srv := newTestService(repo, &fakeQuoteApi{})

	err := srv.RefreshTickers(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, repo.upsertedTickers)
}

func TestGenerateReport_UsesValuation(t *testing.T) {
	repo := &fakeRepo{
		ledgers: []model.AccountLedger{
			{ID: 1, Name: "Main", Envelopes: []model.Envelope{{TypeID: 1, Cash: d("10")}}},
		},
	}
	reportGen := &fakeReportGenerator{fileBytes: []byte("xlsx"), fileExtension: ".xlsx"}
	srv := New(&config.Config{}, repo, &fakeCache{}, &fakeQuoteApi{}, &fakeTickerApi{}, reportGen, nil)

	fileBytes, ext, err := srv.GenerateReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []byte("xlsx"), fileBytes)
	assert.Equal(t, ".xlsx", ext)
	require.Len(t, reportGen.accounts, 1)
	assert.Equal(t, "Main", reportGen.accounts[0].Name)
}

type fakeReportGenerator struct {
	accounts      []model.AccountValuation
	fileBytes     []byte
	fileExtension string
}

func (f *fakeReportGenerator) Generate(ctx context.Context, accounts []model.AccountValuation) ([]byte, string, error) {
	f.accounts = accounts
	return f.fileBytes, f.fileExtension, nil
}

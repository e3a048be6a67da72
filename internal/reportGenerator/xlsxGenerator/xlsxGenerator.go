package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qrenard/patrimoine/internal/model"
	"github.com/qrenard/patrimoine/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var positionHeaders = []string{"Symbol", "Name", "Quantity", "Avg price", "Current price", "Current value", "Invested", "Gain/loss", "Gain/loss %", "Currency"}

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the valuation tree to an .xlsx workbook, one sheet
// per account with a block per envelope.
func (g *XLSXGenerator) Generate(ctx context.Context, accounts []model.AccountValuation) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(accounts) == 0 {
		return nil, "", errors.New("empty accounts")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", closeErr.Error()))
		}
	}()

	for i, account := range accounts {
		if err := g.fillSheet(ctx, f, account, i+1); err != nil {
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(ctx context.Context, f *excelize.File, account model.AccountValuation, ordinal int) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.fillSheet"

	sheetName := fmt.Sprintf("%d. %s", ordinal, account.Name)
	if _, err := f.NewSheet(sheetName); err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheetName, cell("A", row), account.Name)
	f.SetCellValue(sheetName, cell("B", row), "Total")
	f.SetCellValue(sheetName, cell("C", row), decimalValue(account.TotalValue))
	f.SetCellStyle(sheetName, cell("A", row), cell("C", row), headerStyle)
	row += 2

	for _, envelope := range account.Types {
		f.SetCellValue(sheetName, cell("A", row), envelope.Name)
		f.SetCellStyle(sheetName, cell("A", row), cell("A", row), headerStyle)
		row++

		f.SetCellValue(sheetName, cell("A", row), "Cash")
		f.SetCellValue(sheetName, cell("B", row), decimalValue(envelope.Cash))
		f.SetCellValue(sheetName, cell("C", row), "Total value")
		f.SetCellValue(sheetName, cell("D", row), decimalValue(envelope.TotalValue))
		f.SetCellValue(sheetName, cell("E", row), "Invested")
		f.SetCellValue(sheetName, cell("F", row), decimalValue(envelope.TotalInvested))
		f.SetCellValue(sheetName, cell("G", row), "Gain/loss")
		f.SetCellValue(sheetName, cell("H", row), decimalValue(envelope.DiffValue))
		row++

		if len(envelope.Positions) == 0 {
			row++
			continue
		}

		for i, header := range positionHeaders {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheetName, cell(col, row), header)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(positionHeaders))
		f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)
		row++

		for _, position := range envelope.Positions {
			f.SetCellValue(sheetName, cell("A", row), position.Symbol)
			f.SetCellValue(sheetName, cell("B", row), position.LongName)
			f.SetCellValue(sheetName, cell("C", row), decimalValue(position.Quantity))
			f.SetCellValue(sheetName, cell("D", row), decimalValue(position.AvgPrice))
			f.SetCellValue(sheetName, cell("E", row), decimalValue(position.CurrentPrice))
			f.SetCellValue(sheetName, cell("F", row), decimalValue(position.CurrentValue))
			f.SetCellValue(sheetName, cell("G", row), decimalValue(position.TotalCost))
			f.SetCellValue(sheetName, cell("H", row), decimalValue(position.DiffValue))
			f.SetCellValue(sheetName, cell("I", row), decimalValue(position.DiffPercent))
			f.SetCellValue(sheetName, cell("J", row), position.Currency)
			row++
		}

		row++
	}

	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func decimalValue(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

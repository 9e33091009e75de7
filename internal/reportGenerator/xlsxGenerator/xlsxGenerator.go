package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) CreatePortfolioReport(ctx context.Context, portfolio model.Portfolio, holdings []model.Holding, summary model.PortfolioSummary) (fileBytes []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.CreatePortfolioReport"

	slog.Debug("CreatePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheetName := sheetNameFor(portfolio.Name)

	_, err = f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillSheet(f, sheetName, holdings, summary); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("CreatePortfolioReport completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), fmt.Sprintf("portfolio_%d.xlsx", portfolio.PortfolioID), nil
}

var sheetNameSanitizer = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "")

// sheetNameFor makes a workbook-legal sheet name out of the portfolio name:
// excelize rejects : \ / ? * [ ], empty names and names over 31 characters.
func sheetNameFor(name string) string {
	name = strings.TrimSpace(sheetNameSanitizer.Replace(name))
	if name == "" {
		return "Portfolio"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, sheetName string, holdings []model.Holding, summary model.PortfolioSummary) error {
	if err := f.MergeCell(sheetName, "A1", "I1"); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Holdings")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyle); err != nil {
		return fmt.Errorf("can't apply style: %w", err)
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", "name")
	_ = f.SetCellStr(sheetName, "C2", "shares")
	_ = f.SetCellStr(sheetName, "D2", "avg price")
	_ = f.SetCellStr(sheetName, "E2", "price")
	_ = f.SetCellStr(sheetName, "F2", "value")
	_ = f.SetCellStr(sheetName, "G2", "gain/loss")
	_ = f.SetCellStr(sheetName, "H2", "gain/loss %")
	_ = f.SetCellStr(sheetName, "I2", "weight %")

	for i, holding := range holdings {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), holding.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), holding.Stock.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), holding.Shares.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), holding.AvgPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), holding.Stock.Price.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), holding.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), holding.GainLoss.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), holding.GainLossPercent.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), holding.PortfolioPercent.InexactFloat64())
	}

	rowNum := len(holdings) + 5

	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum)); err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Summary")

	summaryStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), summaryStyle); err != nil {
		return fmt.Errorf("can't apply style: %w", err)
	}

	summaryRows := []struct {
		label string
		value float64
	}{
		{"total value", summary.TotalValue.InexactFloat64()},
		{"total cost", summary.TotalCost.InexactFloat64()},
		{"total gain", summary.TotalGain.InexactFloat64()},
		{"total gain %", summary.TotalGainPercent.InexactFloat64()},
		{"day change", summary.DayChange.InexactFloat64()},
		{"day change %", summary.DayChangePercent.InexactFloat64()},
		{"buying power", summary.BuyingPower.InexactFloat64()},
	}

	for _, sr := range summaryRows {
		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), sr.label)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), sr.value)
	}

	return nil
}

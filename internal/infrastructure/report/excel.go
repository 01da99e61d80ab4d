// Package report renders the market-insights dashboard as an XLSX download.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/terravilla/marketplace/internal/core/domain"
)

const (
	comparisonsSheet = "Price Comparisons"
	recentSheet      = "Recent Listings"
)

type ExcelBuilder struct{}

func NewExcelBuilder() *ExcelBuilder {
	return &ExcelBuilder{}
}

func (b *ExcelBuilder) WriteMarketReport(
	ctx context.Context,
	w io.Writer,
	comparisons []domain.PriceComparison,
	recent []domain.RecentListing,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := b.writeComparisons(f, comparisons); err != nil {
		return err
	}
	if err := b.writeRecent(f, recent); err != nil {
		return err
	}
	// The default sheet excelize creates is replaced by our first sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (b *ExcelBuilder) writeComparisons(f *excelize.File, comparisons []domain.PriceComparison) error {
	if _, err := f.NewSheet(comparisonsSheet); err != nil {
		return fmt.Errorf("create comparisons sheet: %w", err)
	}
	header := []any{"City", "State", "Area Type", "Avg ₹/sqft", "Min ₹/sqft", "Max ₹/sqft", "Samples", "Trend %", "Last Updated"}
	if err := f.SetSheetRow(comparisonsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write comparisons header: %w", err)
	}
	for i, cmp := range comparisons {
		row := []any{
			cmp.City,
			cmp.State,
			string(cmp.AreaType),
			cmp.AvgPricePerSqft,
			cmp.MinPricePerSqft,
			cmp.MaxPricePerSqft,
			cmp.SampleSize,
			fmt.Sprintf("%.1f", cmp.Trend()),
			cmp.LastUpdated.Format("2006-01-02"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(comparisonsSheet, cell, &row); err != nil {
			return fmt.Errorf("write comparison row %d: %w", i, err)
		}
	}
	return nil
}

func (b *ExcelBuilder) writeRecent(f *excelize.File, recent []domain.RecentListing) error {
	if _, err := f.NewSheet(recentSheet); err != nil {
		return fmt.Errorf("create recent sheet: %w", err)
	}
	header := []any{"Title", "City", "State", "Area sqft", "Price", "₹/sqft", "Vs City Avg %", "Status"}
	if err := f.SetSheetRow(recentSheet, "A1", &header); err != nil {
		return fmt.Errorf("write recent header: %w", err)
	}
	for i, entry := range recent {
		vsAvg := "n/a"
		if entry.HasComparison && entry.VsAveragePct != nil {
			vsAvg = fmt.Sprintf("%+.1f", *entry.VsAveragePct)
		}
		row := []any{
			entry.Plot.Title,
			entry.Plot.City,
			entry.Plot.State,
			entry.Plot.AreaSqft,
			domain.FormatPriceDisplay(entry.Plot.Price),
			entry.Plot.PricePerSqft,
			vsAvg,
			string(entry.Plot.Status),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(recentSheet, cell, &row); err != nil {
			return fmt.Errorf("write recent row %d: %w", i, err)
		}
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

const recentListingsLimit = 5

// MarketReportBuilder renders the insights dashboard into a downloadable
// spreadsheet.
type MarketReportBuilder interface {
	WriteMarketReport(ctx context.Context, w io.Writer, comparisons []domain.PriceComparison, recent []domain.RecentListing) error
}

type MarketUseCase struct {
	comparisons ports.PriceComparisonRepository
	plots       ports.PlotRepository
	report      MarketReportBuilder
}

func NewMarketUseCase(
	comparisons ports.PriceComparisonRepository,
	plots ports.PlotRepository,
	report MarketReportBuilder,
) *MarketUseCase {
	return &MarketUseCase{
		comparisons: comparisons,
		plots:       plots,
		report:      report,
	}
}

func (uc *MarketUseCase) Comparisons(ctx context.Context) ([]domain.PriceComparison, error) {
	comparisons, err := uc.comparisons.ListComparisons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price comparisons: %w", err)
	}
	return comparisons, nil
}

// RecentListings returns the first few catalog entries annotated with their
// delta against the residential average of the same city, when a comparison
// record exists.
func (uc *MarketUseCase) RecentListings(ctx context.Context) ([]domain.RecentListing, error) {
	plots, err := uc.plots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	comparisons, err := uc.comparisons.ListComparisons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list price comparisons: %w", err)
	}

	if len(plots) > recentListingsLimit {
		plots = plots[:recentListingsLimit]
	}

	out := make([]domain.RecentListing, 0, len(plots))
	for _, plot := range plots {
		entry := domain.RecentListing{Plot: plot}
		if cmp, ok := residentialComparison(comparisons, plot.City); ok && cmp.AvgPricePerSqft > 0 {
			delta := float64(plot.PricePerSqft-cmp.AvgPricePerSqft) / float64(cmp.AvgPricePerSqft) * 100
			entry.VsAveragePct = &delta
			entry.HasComparison = true
		}
		out = append(out, entry)
	}
	return out, nil
}

func (uc *MarketUseCase) Report(ctx context.Context, w io.Writer) error {
	comparisons, err := uc.Comparisons(ctx)
	if err != nil {
		return err
	}
	recent, err := uc.RecentListings(ctx)
	if err != nil {
		return err
	}
	if err := uc.report.WriteMarketReport(ctx, w, comparisons, recent); err != nil {
		return fmt.Errorf("build market report: %w", err)
	}
	return nil
}

func residentialComparison(comparisons []domain.PriceComparison, city string) (domain.PriceComparison, bool) {
	for _, cmp := range comparisons {
		if cmp.City == city && cmp.AreaType == domain.AreaResidential {
			return cmp, true
		}
	}
	return domain.PriceComparison{}, false
}

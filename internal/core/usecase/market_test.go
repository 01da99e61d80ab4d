package usecase

import (
	"bytes"
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type fakeReportBuilder struct {
	called bool
}

func (b *fakeReportBuilder) WriteMarketReport(_ context.Context, w io.Writer, comparisons []domain.PriceComparison, recent []domain.RecentListing) error {
	b.called = true
	_, err := w.Write([]byte("workbook"))
	return err
}

func marketCatalog() []domain.Plot {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, city, state string, areaSqft float64, price int64) domain.Plot {
		return domain.NewPlot(id, "seller-1", "Plot "+id, "Addr "+id, city, state, areaSqft, price, now)
	}
	return []domain.Plot{
		mk("p1", "Bengaluru", "Karnataka", 1000, 5_500_000), // 5500/sqft vs avg 5000 → +10%
		mk("p2", "Pune", "Maharashtra", 1000, 4_000_000),    // no comparison row
		mk("p3", "Bengaluru", "Karnataka", 1000, 4_500_000), // -10%
		mk("p4", "Chennai", "Tamil Nadu", 1000, 3_000_000),
		mk("p5", "Hyderabad", "Telangana", 1000, 6_000_000),
		mk("p6", "Gurugram", "Haryana", 1000, 9_000_000), // beyond the recent window
	}
}

func marketComparisons() []domain.PriceComparison {
	return []domain.PriceComparison{
		{City: "Bengaluru", State: "Karnataka", AreaType: domain.AreaResidential, AvgPricePerSqft: 5000, MinPricePerSqft: 4000, MaxPricePerSqft: 6500, SampleSize: 120},
		{City: "Bengaluru", State: "Karnataka", AreaType: domain.AreaCommercial, AvgPricePerSqft: 9000, MinPricePerSqft: 7000, MaxPricePerSqft: 12000, SampleSize: 40},
		{City: "Chennai", State: "Tamil Nadu", AreaType: domain.AreaResidential, AvgPricePerSqft: 3000, MinPricePerSqft: 2400, MaxPricePerSqft: 4100, SampleSize: 75},
	}
}

func TestRecentListingsAnnotation(t *testing.T) {
	uc := NewMarketUseCase(
		&fakeComparisonRepo{comparisons: marketComparisons()},
		newFakePlotRepo(marketCatalog()...),
		&fakeReportBuilder{},
	)

	recent, err := uc.RecentListings(context.Background())
	if err != nil {
		t.Fatalf("recent listings: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent window is the first five entries, got %d", len(recent))
	}

	// p1: residential Bengaluru average 5000, listing at 5500 → +10%.
	first := recent[0]
	if !first.HasComparison || first.VsAveragePct == nil {
		t.Fatalf("p1 must have a comparison")
	}
	if math.Abs(*first.VsAveragePct-10.0) > 0.01 {
		t.Fatalf("expected +10%%, got %f", *first.VsAveragePct)
	}

	// p2: Pune has no comparison row.
	if recent[1].HasComparison || recent[1].VsAveragePct != nil {
		t.Fatalf("p2 must not have a comparison")
	}

	// p3: -10% against the same residential average. The commercial row for
	// the same city must not be used.
	if math.Abs(*recent[2].VsAveragePct+10.0) > 0.01 {
		t.Fatalf("expected -10%%, got %f", *recent[2].VsAveragePct)
	}
}

func TestPriceComparisonTrend(t *testing.T) {
	cmp := domain.PriceComparison{AvgPricePerSqft: 5000, MinPricePerSqft: 4000}
	if got := cmp.Trend(); math.Abs(got-25.0) > 0.01 {
		t.Fatalf("expected 25%% trend, got %f", got)
	}

	zero := domain.PriceComparison{AvgPricePerSqft: 5000, MinPricePerSqft: 0}
	if got := zero.Trend(); got != 0 {
		t.Fatalf("zero minimum must yield zero trend, got %f", got)
	}
}

func TestReportDelegatesToBuilder(t *testing.T) {
	builder := &fakeReportBuilder{}
	uc := NewMarketUseCase(
		&fakeComparisonRepo{comparisons: marketComparisons()},
		newFakePlotRepo(marketCatalog()...),
		builder,
	)

	var buf bytes.Buffer
	if err := uc.Report(context.Background(), &buf); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !builder.called {
		t.Fatalf("report builder never invoked")
	}
	if buf.Len() == 0 {
		t.Fatalf("report produced no output")
	}
}

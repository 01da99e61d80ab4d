package memory

import (
	"context"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

// SeedPlots is the fixed demo catalog. Every entry ships verified so the
// search page has inventory on first run.
func SeedPlots() []domain.Plot {
	return []domain.Plot{
		seedPlot("plot-001", "seller-101", "Ramesh Kumar", "+91 9845012345",
			"Premium Residential Plot in Whitefield",
			"East-facing corner plot close to the ITPL tech corridor with clear title and fenced boundary.",
			"Survey No 45/2, Whitefield Main Road", "Bengaluru", "Karnataka",
			2400, 9_600_000, "2025-03-12"),
		seedPlot("plot-002", "seller-102", "Sunita Deshpande", "+91 9822054321",
			"DTCP Approved Plot near Hinjawadi",
			"Level plot inside a gated layout, ten minutes from the Phase 1 IT park. All approvals in place.",
			"Plot 18, Sai Nagar Layout, Hinjawadi", "Pune", "Maharashtra",
			1800, 6_300_000, "2025-04-02"),
		seedPlot("plot-003", "seller-103", "Venkat Reddy", "+91 9000012378",
			"Commercial Plot on ORR Frontage",
			"High-visibility frontage on the Outer Ring Road service lane, suited for showroom or office development.",
			"Survey No 112, Gachibowli ORR", "Hyderabad", "Telangana",
			4000, 32_000_000, "2025-02-20"),
		seedPlot("plot-004", "seller-101", "Ramesh Kumar", "+91 9845012345",
			"Gated Community Villa Plot, Sarjapur",
			"Villa plot inside an established gated community with clubhouse, parks and 24x7 security.",
			"Block C, Green Acres, Sarjapur Road", "Bengaluru", "Karnataka",
			1500, 8_250_000, "2025-05-18"),
		seedPlot("plot-005", "seller-104", "Meena Iyer", "+91 9444098712",
			"Seaside Residential Plot, ECR",
			"Quiet residential plot two streets from the beach on the East Coast Road stretch.",
			"Door 7, Kalpakkam Road, ECR", "Chennai", "Tamil Nadu",
			2200, 7_700_000, "2025-06-01"),
		seedPlot("plot-006", "seller-105", "Harpreet Singh", "+91 9811076543",
			"Agricultural Land near Sohna",
			"Fertile irrigated parcel with bore well and road access, an hour from Gurugram.",
			"Khasra 221, Sohna Tehsil", "Gurugram", "Haryana",
			21780, 13_000_000, "2025-01-28"),
	}
}

// SeedPriceComparisons is the fixed regional price table behind the market
// insights dashboard.
func SeedPriceComparisons() []domain.PriceComparison {
	updated := seedTime("2025-07-15")
	return []domain.PriceComparison{
		{City: "Bengaluru", State: "Karnataka", AreaType: domain.AreaResidential, AvgPricePerSqft: 5200, MinPricePerSqft: 3800, MaxPricePerSqft: 7400, SampleSize: 142, LastUpdated: updated},
		{City: "Pune", State: "Maharashtra", AreaType: domain.AreaResidential, AvgPricePerSqft: 3900, MinPricePerSqft: 2900, MaxPricePerSqft: 5600, SampleSize: 98, LastUpdated: updated},
		{City: "Hyderabad", State: "Telangana", AreaType: domain.AreaCommercial, AvgPricePerSqft: 8600, MinPricePerSqft: 6200, MaxPricePerSqft: 12800, SampleSize: 54, LastUpdated: updated},
		{City: "Hyderabad", State: "Telangana", AreaType: domain.AreaResidential, AvgPricePerSqft: 4600, MinPricePerSqft: 3300, MaxPricePerSqft: 6900, SampleSize: 117, LastUpdated: updated},
		{City: "Chennai", State: "Tamil Nadu", AreaType: domain.AreaResidential, AvgPricePerSqft: 4100, MinPricePerSqft: 3000, MaxPricePerSqft: 6200, SampleSize: 76, LastUpdated: updated},
		{City: "Gurugram", State: "Haryana", AreaType: domain.AreaAgricultural, AvgPricePerSqft: 640, MinPricePerSqft: 420, MaxPricePerSqft: 980, SampleSize: 31, LastUpdated: updated},
	}
}

// PriceComparisonRepository serves the static comparison table.
type PriceComparisonRepository struct {
	comparisons []domain.PriceComparison
}

func NewPriceComparisonRepository(seed []domain.PriceComparison) *PriceComparisonRepository {
	return &PriceComparisonRepository{comparisons: seed}
}

func (r *PriceComparisonRepository) ListComparisons(_ context.Context) ([]domain.PriceComparison, error) {
	out := make([]domain.PriceComparison, len(r.comparisons))
	copy(out, r.comparisons)
	return out, nil
}

func seedPlot(id, sellerID, sellerName, sellerPhone, title, description, address, city, state string, areaSqft float64, price int64, listed string) domain.Plot {
	createdAt := seedTime(listed)
	plot := domain.NewPlot(id, sellerID, title, address, city, state, areaSqft, price, createdAt)
	plot.SellerName = sellerName
	plot.SellerPhone = sellerPhone
	plot.Description = description
	plot.OwnerName = sellerName
	plot.PropertyOwnerName = sellerName
	plot.OwnerVerified = true
	plot.Status = domain.PlotVerified
	plot.VerificationStatus = domain.VerificationVerified
	plot.BlockchainHash = plot.OwnershipHash()
	plot.Images = []string{
		"plots/" + id + "/images/front.jpg",
		"plots/" + id + "/images/aerial.jpg",
	}
	return plot
}

func seedTime(date string) time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return t.UTC()
}

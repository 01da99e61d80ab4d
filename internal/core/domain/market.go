package domain

import "time"

type AreaType string

const (
	AreaResidential  AreaType = "residential"
	AreaCommercial   AreaType = "commercial"
	AreaAgricultural AreaType = "agricultural"
)

type PriceComparison struct {
	City            string    `json:"city"`
	State           string    `json:"state"`
	AreaType        AreaType  `json:"area_type"`
	AvgPricePerSqft int64     `json:"avg_price_per_sqft"`
	MinPricePerSqft int64     `json:"min_price_per_sqft"`
	MaxPricePerSqft int64     `json:"max_price_per_sqft"`
	SampleSize      int       `json:"sample_size"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Trend is the percentage spread of the average above the regional minimum.
func (c PriceComparison) Trend() float64 {
	if c.MinPricePerSqft == 0 {
		return 0
	}
	return float64(c.AvgPricePerSqft-c.MinPricePerSqft) / float64(c.MinPricePerSqft) * 100
}

// RecentListing is a catalog entry annotated with its delta against the
// residential average of its city, when one exists.
type RecentListing struct {
	Plot          Plot     `json:"plot"`
	VsAveragePct  *float64 `json:"vs_average_pct,omitempty"`
	HasComparison bool     `json:"has_comparison"`
}

package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

type SearchUseCase struct {
	repo ports.PlotRepository
}

func NewSearchUseCase(repo ports.PlotRepository) *SearchUseCase {
	return &SearchUseCase{repo: repo}
}

// Search returns the subsequence of the catalog satisfying every predicate in
// the filter, preserving catalog order.
func (uc *SearchUseCase) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Plot, error) {
	plots, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return FilterPlots(plots, filter), nil
}

// Facets derives the city and state option lists: distinct values in
// first-seen catalog order.
func (uc *SearchUseCase) Facets(ctx context.Context) (domain.SearchFacets, error) {
	plots, err := uc.repo.List(ctx)
	if err != nil {
		return domain.SearchFacets{}, fmt.Errorf("list catalog: %w", err)
	}

	facets := domain.SearchFacets{
		Cities: []string{},
		States: []string{},
	}
	seenCity := map[string]bool{}
	seenState := map[string]bool{}
	for _, plot := range plots {
		if !seenCity[plot.City] {
			seenCity[plot.City] = true
			facets.Cities = append(facets.Cities, plot.City)
		}
		if !seenState[plot.State] {
			seenState[plot.State] = true
			facets.States = append(facets.States, plot.State)
		}
	}
	return facets, nil
}

// FilterPlots applies the filter synchronously over the given catalog slice.
// It is a pure, stable filter: no re-sort, no partial results.
func FilterPlots(plots []domain.Plot, filter domain.SearchFilter) []domain.Plot {
	minPrice := int64(0)
	if filter.MinPriceLakhs != nil {
		minPrice = domain.LakhsToRupees(*filter.MinPriceLakhs)
	}
	maxPrice := int64(math.MaxInt64)
	if filter.MaxPriceLakhs != nil {
		maxPrice = domain.LakhsToRupees(*filter.MaxPriceLakhs)
	}

	text := strings.ToLower(filter.Text)

	out := make([]domain.Plot, 0, len(plots))
	for _, plot := range plots {
		if text != "" &&
			!strings.Contains(strings.ToLower(plot.Title), text) &&
			!strings.Contains(strings.ToLower(plot.City), text) &&
			!strings.Contains(strings.ToLower(plot.LocationAddress), text) {
			continue
		}
		if filter.City != "" && plot.City != filter.City {
			continue
		}
		if filter.State != "" && plot.State != filter.State {
			continue
		}
		if plot.Price < minPrice || plot.Price > maxPrice {
			continue
		}
		out = append(out, plot)
	}
	return out
}

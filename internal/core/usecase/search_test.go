package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func searchCatalog() []domain.Plot {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id, title, address, city, state string, priceLakhs float64) domain.Plot {
		return domain.NewPlot(id, "seller-1", title, address, city, state, 1200, domain.LakhsToRupees(priceLakhs), now)
	}
	return []domain.Plot{
		mk("p1", "Lakeview residential plot", "12 Lake Road", "Bengaluru", "Karnataka", 45),
		mk("p2", "Highway-facing plot", "NH-48 Service Road", "Pune", "Maharashtra", 30),
		mk("p3", "Gated layout corner plot", "Kokapet Main Road", "Hyderabad", "Telangana", 80),
		mk("p4", "Budget plot near lake", "4 Tank Bund", "Bengaluru", "Karnataka", 12),
	}
}

func lakhs(v float64) *float64 { return &v }

func TestFilterPlots(t *testing.T) {
	catalog := searchCatalog()

	cases := []struct {
		name   string
		filter domain.SearchFilter
		want   []string
	}{
		{"empty filter is identity", domain.SearchFilter{}, []string{"p1", "p2", "p3", "p4"}},
		{"text matches title case-insensitively", domain.SearchFilter{Text: "LAKE"}, []string{"p1", "p4"}},
		{"text matches address", domain.SearchFilter{Text: "service road"}, []string{"p2"}},
		{"text matches city", domain.SearchFilter{Text: "hyder"}, []string{"p3"}},
		{"city is exact", domain.SearchFilter{City: "Bengaluru"}, []string{"p1", "p4"}},
		{"state is exact", domain.SearchFilter{State: "Maharashtra"}, []string{"p2"}},
		{"min bound inclusive", domain.SearchFilter{MinPriceLakhs: lakhs(45)}, []string{"p1", "p3"}},
		{"max bound inclusive", domain.SearchFilter{MaxPriceLakhs: lakhs(30)}, []string{"p2", "p4"}},
		{"bounds combine", domain.SearchFilter{MinPriceLakhs: lakhs(20), MaxPriceLakhs: lakhs(50)}, []string{"p1", "p2"}},
		{"predicates AND together", domain.SearchFilter{Text: "plot", City: "Bengaluru", MaxPriceLakhs: lakhs(20)}, []string{"p4"}},
		{"no matches yields empty", domain.SearchFilter{City: "Chennai"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterPlots(catalog, tc.filter)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d results, got %d", len(tc.want), len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s (order must follow the catalog)", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestFilterPlotsIsIdempotent(t *testing.T) {
	catalog := searchCatalog()
	filter := domain.SearchFilter{City: "Bengaluru", MaxPriceLakhs: lakhs(50)}

	once := FilterPlots(catalog, filter)
	twice := FilterPlots(once, filter)
	if len(once) != len(twice) {
		t.Fatalf("re-filtering changed the result: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("re-filtering reordered results at %d", i)
		}
	}
}

func TestFacetsFirstSeenOrder(t *testing.T) {
	repo := newFakePlotRepo(searchCatalog()...)
	uc := NewSearchUseCase(repo)

	facets, err := uc.Facets(context.Background())
	if err != nil {
		t.Fatalf("facets: %v", err)
	}

	wantCities := []string{"Bengaluru", "Pune", "Hyderabad"}
	if len(facets.Cities) != len(wantCities) {
		t.Fatalf("expected %d cities, got %v", len(wantCities), facets.Cities)
	}
	for i, city := range wantCities {
		if facets.Cities[i] != city {
			t.Fatalf("city %d: expected %s, got %s", i, city, facets.Cities[i])
		}
	}

	wantStates := []string{"Karnataka", "Maharashtra", "Telangana"}
	for i, state := range wantStates {
		if facets.States[i] != state {
			t.Fatalf("state %d: expected %s, got %s", i, state, facets.States[i])
		}
	}
}

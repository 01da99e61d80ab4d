package httpadapter

import "net/http"

// View describes a navigable surface of the marketplace client and whether
// reaching it requires an active session.
type View struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	RequiresAuth bool   `json:"requires_auth"`
}

// The catalog of views mirrors the route groups above: browsing and market
// insights are public, everything that writes is session-gated.
var views = []View{
	{Name: "home", Path: "/v1/plots", RequiresAuth: false},
	{Name: "plot_detail", Path: "/v1/plots/{plot_id}", RequiresAuth: false},
	{Name: "market_insights", Path: "/v1/market/comparisons", RequiresAuth: false},
	{Name: "sell_wizard", Path: "/v1/wizard", RequiresAuth: true},
	{Name: "payment", Path: "/v1/payments/{plot_id}", RequiresAuth: true},
	{Name: "my_listings", Path: "/v1/plots/mine", RequiresAuth: true},
	{Name: "profile", Path: "/v1/auth/me", RequiresAuth: true},
	{Name: "transactions", Path: "/v1/transactions", RequiresAuth: true},
}

func (rt *Router) listViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": views})
}

package httpadapter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func (rt *Router) searchPlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	filter, err := parseSearchFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	plots, err := rt.search.Search(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		filtered := filter != (domain.SearchFilter{})
		rt.metrics.RecordSearch(serviceName, filtered, len(plots))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plots": plots,
		"count": len(plots),
	})
}

// parseSearchFilter reads the filter from query parameters. Price bounds are
// given in lakhs; an absent or unparsable bound means unbounded.
func parseSearchFilter(r *http.Request) (domain.SearchFilter, error) {
	q := r.URL.Query()
	filter := domain.SearchFilter{
		Text:  strings.TrimSpace(q.Get("q")),
		City:  strings.TrimSpace(q.Get("city")),
		State: strings.TrimSpace(q.Get("state")),
	}
	if raw := strings.TrimSpace(q.Get("min_price_lakhs")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SearchFilter{}, domain.NewValidationError("min_price_lakhs", "minimum price must be a number")
		}
		filter.MinPriceLakhs = &value
	}
	if raw := strings.TrimSpace(q.Get("max_price_lakhs")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SearchFilter{}, domain.NewValidationError("max_price_lakhs", "maximum price must be a number")
		}
		filter.MaxPriceLakhs = &value
	}
	return filter, nil
}

func (rt *Router) plotFacets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	facets, err := rt.search.Facets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (rt *Router) myPlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	user, _ := sessionUserFromContext(r.Context())
	plots, err := rt.reader.ListBySeller(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plots": plots,
		"count": len(plots),
	})
}

func (rt *Router) getPlotByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/plots/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plot id is required"})
		return
	}

	plot, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plot)
}

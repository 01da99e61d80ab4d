package domain

// SearchFilter is the predicate set for catalog browsing. Nil price bounds
// mean "unbounded": min defaults to zero, max to +infinity. Prices are
// expressed in lakhs, matching the search controls.
type SearchFilter struct {
	Text          string
	City          string
	State         string
	MinPriceLakhs *float64
	MaxPriceLakhs *float64
}

// SearchFacets holds the selectable filter options derived from the catalog:
// distinct cities and states in first-seen order.
type SearchFacets struct {
	Cities []string `json:"cities"`
	States []string `json:"states"`
}

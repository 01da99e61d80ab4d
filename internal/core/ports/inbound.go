package ports

import (
	"context"
	"io"

	"github.com/terravilla/marketplace/internal/core/domain"
)

// SessionService is the inbound contract for the single-identity session.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Signup(ctx context.Context, email, password, fullName string, userType domain.UserType) (*domain.User, error)
	Logout(ctx context.Context) error
	Current() (*domain.User, bool)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	SubmitKYCDocument(ctx context.Context) (*domain.User, error)
}

// ListingSearcher filters the catalog and derives facet options.
type ListingSearcher interface {
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Plot, error)
	Facets(ctx context.Context) (domain.SearchFacets, error)
}

// ListingReader is the read model for individual listings and seller views.
type ListingReader interface {
	GetByID(ctx context.Context, id string) (*domain.Plot, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Plot, error)
}

// ListingVerifier runs the document verification pipeline for one listing.
type ListingVerifier interface {
	VerifyListing(ctx context.Context, plotID string) error
}

// MarketInsights serves the price-comparison dashboard and its export.
type MarketInsights interface {
	Comparisons(ctx context.Context) ([]domain.PriceComparison, error)
	RecentListings(ctx context.Context) ([]domain.RecentListing, error)
	Report(ctx context.Context, w io.Writer) error
}

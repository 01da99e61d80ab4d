package ports

import (
	"context"
	"io"

	"github.com/terravilla/marketplace/internal/core/domain"
)

// PlotRepository persists and reads listing state. List returns the catalog
// in stable insertion order; the filter engine depends on that.
type PlotRepository interface {
	Create(ctx context.Context, plot *domain.Plot) error
	GetByID(ctx context.Context, id string) (*domain.Plot, error)
	List(ctx context.Context) ([]domain.Plot, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Plot, error)
	UpdateStatus(ctx context.Context, id string, status domain.PlotStatus) error
	UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus, blockchainHash string) error
	UpdateDocument(ctx context.Context, doc domain.Document) error
}

// PriceComparisonRepository reads the regional price records.
type PriceComparisonRepository interface {
	ListComparisons(ctx context.Context) ([]domain.PriceComparison, error)
}

// TransactionRepository persists negotiation state between buyer and seller.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
}

// SessionMirror is the single persisted identity slot. Absence of a stored
// identity means logged out.
type SessionMirror interface {
	Save(ctx context.Context, user domain.User) error
	Load(ctx context.Context) (*domain.User, bool, error)
	Clear(ctx context.Context) error
}

// ObjectStorage stores uploaded listing media and documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ListingQueue publishes/consumes listing-submitted events.
type ListingQueue interface {
	PublishListingSubmitted(ctx context.Context, plotID string) error
	SubscribeListingSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentAnalyzer is the automated pre-screening of an uploaded document.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, doc domain.Document) (domain.AICheckStatus, string, error)
}

// LandRegistry checks a document against the (simulated) government record of
// ownership.
type LandRegistry interface {
	VerifyOwner(ctx context.Context, plot *domain.Plot, doc domain.Document) (domain.GovtCheckStatus, string, error)
}

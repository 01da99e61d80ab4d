package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

// PlotRepository is the seeded in-memory catalog. Insertion order is
// preserved: List always returns plots in the order they were added, seed
// data first.
type PlotRepository struct {
	mu    sync.RWMutex
	plots []domain.Plot
	index map[string]int
}

func NewPlotRepository(seed []domain.Plot) *PlotRepository {
	repo := &PlotRepository{
		index: make(map[string]int, len(seed)),
	}
	for _, plot := range seed {
		repo.index[plot.ID] = len(repo.plots)
		repo.plots = append(repo.plots, plot)
	}
	return repo
}

func (r *PlotRepository) Create(_ context.Context, plot *domain.Plot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[plot.ID]; exists {
		return domain.WrapError(domain.ErrConflict, "create plot",
			fmt.Errorf("plot already exists: %s", plot.ID))
	}
	r.index[plot.ID] = len(r.plots)
	r.plots = append(r.plots, clonePlot(*plot))
	return nil
}

func (r *PlotRepository) GetByID(_ context.Context, id string) (*domain.Plot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get plot", fmt.Errorf("plot: %s", id))
	}
	plot := clonePlot(r.plots[i])
	return &plot, nil
}

func (r *PlotRepository) List(_ context.Context) ([]domain.Plot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Plot, 0, len(r.plots))
	for _, plot := range r.plots {
		out = append(out, clonePlot(plot))
	}
	return out, nil
}

func (r *PlotRepository) ListBySeller(_ context.Context, sellerID string) ([]domain.Plot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Plot, 0)
	for _, plot := range r.plots {
		if plot.SellerID == sellerID {
			out = append(out, clonePlot(plot))
		}
	}
	return out, nil
}

func (r *PlotRepository) UpdateStatus(_ context.Context, id string, status domain.PlotStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update plot status", fmt.Errorf("plot: %s", id))
	}
	r.plots[i].Status = status
	r.plots[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *PlotRepository) UpdateVerification(_ context.Context, id string, status domain.VerificationStatus, blockchainHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update plot verification", fmt.Errorf("plot: %s", id))
	}
	r.plots[i].VerificationStatus = status
	if blockchainHash != "" {
		r.plots[i].BlockchainHash = blockchainHash
	}
	r.plots[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *PlotRepository) UpdateDocument(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[doc.PlotID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("plot: %s", doc.PlotID))
	}
	for j, existing := range r.plots[i].Documents {
		if existing.ID == doc.ID {
			r.plots[i].Documents[j] = doc
			r.plots[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("document: %s", doc.ID))
}

func clonePlot(plot domain.Plot) domain.Plot {
	out := plot
	out.Images = append([]string(nil), plot.Images...)
	out.Documents = append([]domain.Document(nil), plot.Documents...)
	return out
}

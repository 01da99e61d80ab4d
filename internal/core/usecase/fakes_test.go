package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type fakePlotRepo struct {
	mu        sync.Mutex
	order     []string
	plots     map[string]*domain.Plot
	createErr error
}

func newFakePlotRepo(seed ...domain.Plot) *fakePlotRepo {
	repo := &fakePlotRepo{plots: make(map[string]*domain.Plot)}
	for _, plot := range seed {
		copyPlot := plot
		repo.order = append(repo.order, plot.ID)
		repo.plots[plot.ID] = &copyPlot
	}
	return repo
}

func (r *fakePlotRepo) Create(_ context.Context, plot *domain.Plot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.plots[plot.ID]; exists {
		return domain.WrapError(domain.ErrConflict, "create plot", fmt.Errorf("duplicate: %s", plot.ID))
	}
	copyPlot := *plot
	r.order = append(r.order, plot.ID)
	r.plots[plot.ID] = &copyPlot
	return nil
}

func (r *fakePlotRepo) GetByID(_ context.Context, id string) (*domain.Plot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plot, ok := r.plots[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get plot", fmt.Errorf("plot: %s", id))
	}
	copyPlot := *plot
	return &copyPlot, nil
}

func (r *fakePlotRepo) List(_ context.Context) ([]domain.Plot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Plot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.plots[id])
	}
	return out, nil
}

func (r *fakePlotRepo) ListBySeller(_ context.Context, sellerID string) ([]domain.Plot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Plot
	for _, id := range r.order {
		if r.plots[id].SellerID == sellerID {
			out = append(out, *r.plots[id])
		}
	}
	return out, nil
}

func (r *fakePlotRepo) UpdateStatus(_ context.Context, id string, status domain.PlotStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plot, ok := r.plots[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update status", fmt.Errorf("plot: %s", id))
	}
	plot.Status = status
	return nil
}

func (r *fakePlotRepo) UpdateVerification(_ context.Context, id string, status domain.VerificationStatus, blockchainHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plot, ok := r.plots[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update verification", fmt.Errorf("plot: %s", id))
	}
	plot.VerificationStatus = status
	if blockchainHash != "" {
		plot.BlockchainHash = blockchainHash
	}
	return nil
}

func (r *fakePlotRepo) UpdateDocument(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plot, ok := r.plots[doc.PlotID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("plot: %s", doc.PlotID))
	}
	for i := range plot.Documents {
		if plot.Documents[i].ID == doc.ID {
			plot.Documents[i] = doc
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("document: %s", doc.ID))
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.files[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	raw, ok := s.files[key]
	s.mu.Unlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", fmt.Errorf("key: %s", key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeMirror struct {
	mu     sync.Mutex
	stored *domain.User
	fail   error
}

func (m *fakeMirror) Save(_ context.Context, user domain.User) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	m.stored = &user
	m.mu.Unlock()
	return nil
}

func (m *fakeMirror) Load(_ context.Context) (*domain.User, bool, error) {
	if m.fail != nil {
		return nil, false, m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, false, nil
	}
	copyUser := *m.stored
	return &copyUser, true, nil
}

func (m *fakeMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	m.stored = nil
	m.mu.Unlock()
	return nil
}

type fakeQueue struct {
	mu        sync.Mutex
	published []string
	fail      error
}

func (q *fakeQueue) PublishListingSubmitted(_ context.Context, plotID string) error {
	if q.fail != nil {
		return q.fail
	}
	q.mu.Lock()
	q.published = append(q.published, plotID)
	q.mu.Unlock()
	return nil
}

func (q *fakeQueue) SubscribeListingSubmitted(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeAnalyzer struct {
	analyze func(domain.Document) (domain.AICheckStatus, string, error)
}

func (a *fakeAnalyzer) Analyze(_ context.Context, doc domain.Document) (domain.AICheckStatus, string, error) {
	if a.analyze == nil {
		return domain.AICheckPassed, "", nil
	}
	return a.analyze(doc)
}

type fakeRegistry struct {
	verify func(*domain.Plot, domain.Document) (domain.GovtCheckStatus, string, error)
}

func (r *fakeRegistry) VerifyOwner(_ context.Context, plot *domain.Plot, doc domain.Document) (domain.GovtCheckStatus, string, error) {
	if r.verify == nil {
		return domain.GovtCheckVerified, "", nil
	}
	return r.verify(plot, doc)
}

type fakeComparisonRepo struct {
	comparisons []domain.PriceComparison
}

func (r *fakeComparisonRepo) ListComparisons(context.Context) ([]domain.PriceComparison, error) {
	return r.comparisons, nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[string]domain.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[string]domain.Transaction)}
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[tx.ID]; exists {
		return domain.WrapError(domain.ErrConflict, "create transaction", fmt.Errorf("duplicate: %s", tx.ID))
	}
	r.transactions[tx.ID] = *tx
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get transaction", fmt.Errorf("transaction: %s", id))
	}
	copyTx := tx
	return &copyTx, nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[tx.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update transaction", fmt.Errorf("transaction: %s", tx.ID))
	}
	r.transactions[tx.ID] = *tx
	return nil
}

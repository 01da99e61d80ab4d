package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/usecase"
	"github.com/terravilla/marketplace/internal/infrastructure/report"
	"github.com/terravilla/marketplace/internal/infrastructure/repository/memory"
)

type memoryMirror struct {
	mu     sync.Mutex
	stored *domain.User
}

func (m *memoryMirror) Save(_ context.Context, user domain.User) error {
	m.mu.Lock()
	m.stored = &user
	m.mu.Unlock()
	return nil
}

func (m *memoryMirror) Load(context.Context) (*domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, false, nil
	}
	copyUser := *m.stored
	return &copyUser, true, nil
}

func (m *memoryMirror) Clear(context.Context) error {
	m.mu.Lock()
	m.stored = nil
	m.mu.Unlock()
	return nil
}

type nopStorage struct{}

func (nopStorage) Save(_ context.Context, _ string, data io.Reader) error {
	_, err := io.Copy(io.Discard, data)
	return err
}

func (nopStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
}

func newTestHandler(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	plots := memory.NewPlotRepository(memory.SeedPlots())
	comparisons := memory.NewPriceComparisonRepository(memory.SeedPriceComparisons())
	session := usecase.NewSessionManager(&memoryMirror{})
	wizard := usecase.NewListingWizardUseCase(plots, nopStorage{})
	payments := usecase.NewPaymentSimulator(
		func(context.Context, string) error { return nil },
		slog.Default(),
		usecase.WithPaymentDelays(5*time.Millisecond, 5*time.Millisecond),
	)
	t.Cleanup(payments.Close)
	market := usecase.NewMarketUseCase(comparisons, plots, report.NewExcelBuilder())
	transactions := usecase.NewTransactionUseCase(memory.NewTransactionRepository(), plots)
	tokens := NewTokenManager("test-secret", time.Hour)

	return NewRouter(
		session,
		tokens,
		usecase.NewSearchUseCase(plots),
		plots,
		wizard,
		payments,
		market,
		transactions,
		slog.Default(),
		opts...,
	).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	res := doJSON(t, handler, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "anything",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		t.Fatalf("login response missing token")
	}
	return payload.Token
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	res := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestSearchFiltersByCity(t *testing.T) {
	handler := newTestHandler(t)

	res := doJSON(t, handler, http.MethodGet, "/v1/plots?city=Bengaluru", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Plots []domain.Plot `json:"plots"`
		Count int           `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count == 0 {
		t.Fatalf("seed catalog expected Bengaluru listings")
	}
	for _, plot := range payload.Plots {
		if plot.City != "Bengaluru" {
			t.Fatalf("city filter leaked %s", plot.City)
		}
	}
}

func TestSearchRejectsBadPriceBound(t *testing.T) {
	handler := newTestHandler(t)
	res := doJSON(t, handler, http.MethodGet, "/v1/plots?min_price_lakhs=abc", "", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["field"] != "min_price_lakhs" {
		t.Fatalf("expected field name in error, got %v", payload)
	}
}

func TestPlotByIDNotFound(t *testing.T) {
	handler := newTestHandler(t)
	res := doJSON(t, handler, http.MethodGet, "/v1/plots/does-not-exist", "", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestWizardRequiresSession(t *testing.T) {
	handler := newTestHandler(t)
	res := doJSON(t, handler, http.MethodGet, "/v1/wizard", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/wizard", "not-a-token", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", res.Code)
	}
}

func TestLoginTokenGrantsAccess(t *testing.T) {
	handler := newTestHandler(t)
	token := loginToken(t, handler)

	res := doJSON(t, handler, http.MethodGet, "/v1/auth/me", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var user domain.User
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.ID != "1" || user.FullName != "John Doe" {
		t.Fatalf("unexpected identity: %+v", user)
	}
}

func TestWizardOwnerStepValidationOverHTTP(t *testing.T) {
	handler := newTestHandler(t)
	token := loginToken(t, handler)

	res := doJSON(t, handler, http.MethodPost, "/v1/wizard/owner", token, usecase.OwnerDetails{
		OwnerName:         "Asha Rao",
		NationalID:        "1234",
		PropertyOwnerName: "Asha Rao",
	})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	var failure map[string]string
	if err := json.NewDecoder(res.Body).Decode(&failure); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if failure["field"] != "national_id" {
		t.Fatalf("expected national_id failure, got %v", failure)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/wizard/owner", token, usecase.OwnerDetails{
		OwnerName:         "Asha Rao",
		NationalID:        "1234 5678 9012",
		PropertyOwnerName: "ASHA RAO",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var snapshot usecase.WizardSnapshot
	if err := json.NewDecoder(res.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snapshot.Step != usecase.StepPropertyDetails {
		t.Fatalf("expected advance to step 2, got %v", snapshot.Step)
	}
}

func TestPaymentEndpoints(t *testing.T) {
	handler := newTestHandler(t)
	token := loginToken(t, handler)

	res := doJSON(t, handler, http.MethodGet, "/v1/payments/plot-001", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var status paymentResponse
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != usecase.PaymentIdle {
		t.Fatalf("expected idle before pay, got %s", status.Status)
	}
	if status.Fee != domain.ListingFee {
		t.Fatalf("expected listing fee %d, got %d", domain.ListingFee, status.Fee)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/payments/plot-001/pay", token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != usecase.PaymentProcessing {
		t.Fatalf("pay must report processing, got %s", status.Status)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/payments/unknown-plot/pay", token, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("paying for an unknown plot expected 404, got %d", res.Code)
	}
}

func TestMarketEndpointsArePublic(t *testing.T) {
	handler := newTestHandler(t)

	res := doJSON(t, handler, http.MethodGet, "/v1/market/comparisons", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	res = doJSON(t, handler, http.MethodGet, "/v1/market/report", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected report content type: %s", got)
	}
	if res.Body.Len() == 0 {
		t.Fatalf("report body is empty")
	}
}

func TestViewsCatalog(t *testing.T) {
	handler := newTestHandler(t)
	res := doJSON(t, handler, http.MethodGet, "/v1/views", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Views []View `json:"views"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	gated := map[string]bool{}
	for _, view := range payload.Views {
		gated[view.Name] = view.RequiresAuth
	}
	if gated["home"] || !gated["sell_wizard"] {
		t.Fatalf("unexpected auth gating: %v", gated)
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := newTestHandler(t, WithTrafficControl(1, 1, 0, 0))

	res1 := doJSON(t, handler, http.MethodGet, "/v1/plots", "", nil)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	res2 := doJSON(t, handler, http.MethodGet, "/v1/plots", "", nil)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond)

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/v1/plots", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		done <- res.Code
	}()

	<-started

	req := httptest.NewRequest(http.MethodGet, "/v1/plots", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated gate, got %d", res.Code)
	}

	close(release)
	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for first request")
	}
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	handler := newTestHandler(t)
	token := loginToken(t, handler)

	// Seeded verified listing owned by another seller.
	res := doJSON(t, handler, http.MethodPost, "/v1/transactions", token, map[string]any{
		"plot_id": "plot-001",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("express interest expected 201, got %d: %s", res.Code, res.Body.String())
	}
	var tx domain.Transaction
	if err := json.NewDecoder(res.Body).Decode(&tx); err != nil {
		t.Fatalf("decode: %v", err)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/transactions/"+tx.ID+"/negotiate", token, map[string]any{
		"offer_price": 4_000_000,
	})
	if res.Code != http.StatusOK {
		t.Fatalf("negotiate expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/transactions/"+tx.ID+"/escrow/fund", token, nil)
	if res.Code != http.StatusConflict {
		t.Fatalf("funding unopened escrow expected 409, got %d", res.Code)
	}
}

// Package httpadapter exposes the marketplace over HTTP: public catalog
// reads, the authenticated listing wizard and payment flow, market insights
// and the transaction endpoints.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/terravilla/marketplace/internal/core/ports"
	"github.com/terravilla/marketplace/internal/core/usecase"
	"github.com/terravilla/marketplace/internal/observability/metrics"
)

const serviceName = "marketplace-api"

type Router struct {
	session      ports.SessionService
	tokens       *TokenManager
	search       ports.ListingSearcher
	reader       ports.ListingReader
	wizard       *usecase.ListingWizardUseCase
	payments     *usecase.PaymentSimulator
	market       ports.MarketInsights
	transactions *usecase.TransactionUseCase
	metrics      *metrics.HTTPServerMetrics
	logger       *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	maxWait        time.Duration
}

type RouterOption func(*Router)

func WithTrafficControl(rps float64, burst, maxInFlight int, maxWait time.Duration) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxInFlight = maxInFlight
		rt.maxWait = maxWait
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func NewRouter(
	session ports.SessionService,
	tokens *TokenManager,
	search ports.ListingSearcher,
	reader ports.ListingReader,
	wizard *usecase.ListingWizardUseCase,
	payments *usecase.PaymentSimulator,
	market ports.MarketInsights,
	transactions *usecase.TransactionUseCase,
	logger *slog.Logger,
	opts ...RouterOption,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Router{
		session:      session,
		tokens:       tokens,
		search:       search,
		reader:       reader,
		wizard:       wizard,
		payments:     payments,
		market:       market,
		transactions: transactions,
		logger:       logger,
		maxWait:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)

	mux.HandleFunc("/v1/auth/login", rt.login)
	mux.HandleFunc("/v1/auth/signup", rt.signup)
	mux.HandleFunc("/v1/auth/logout", rt.requireSession(rt.logout))
	mux.HandleFunc("/v1/auth/me", rt.requireSession(rt.me))
	mux.HandleFunc("/v1/profile", rt.requireSession(rt.updateProfile))
	mux.HandleFunc("/v1/profile/kyc-document", rt.requireSession(rt.submitKYCDocument))

	mux.HandleFunc("/v1/plots", rt.searchPlots)
	mux.HandleFunc("/v1/plots/facets", rt.plotFacets)
	mux.HandleFunc("/v1/plots/mine", rt.requireSession(rt.myPlots))
	mux.HandleFunc("/v1/plots/", rt.getPlotByID)

	mux.HandleFunc("/v1/wizard", rt.requireSession(rt.wizardSnapshot))
	mux.HandleFunc("/v1/wizard/", rt.requireSession(rt.wizardAction))

	mux.HandleFunc("/v1/payments/", rt.requireSession(rt.paymentAction))

	mux.HandleFunc("/v1/market/comparisons", rt.marketComparisons)
	mux.HandleFunc("/v1/market/recent", rt.marketRecent)
	mux.HandleFunc("/v1/market/report", rt.marketReport)

	mux.HandleFunc("/v1/transactions", rt.requireSession(rt.expressInterest))
	mux.HandleFunc("/v1/transactions/", rt.requireSession(rt.transactionAction))

	mux.HandleFunc("/v1/views", rt.listViews)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.maxWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}

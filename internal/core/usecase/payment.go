package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type PaymentStatus string

const (
	PaymentIdle       PaymentStatus = "idle"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentFailed     PaymentStatus = "failed"
)

// PaymentDecider determines the simulated outcome once the processing delay
// elapses. A nil return means the payment succeeds. The default decider
// always succeeds; the failed branch exists and is reachable, it is just
// never taken unless a decider is installed.
type PaymentDecider func(plotID string) error

// PaymentCompleted is invoked after the post-success settle delay. The
// caller uses it to mark the listing published.
type PaymentCompleted func(ctx context.Context, plotID string) error

// PaymentSimulator walks each listing-fee payment through
// idle → processing → success|failed using timers in place of a real
// processor. Timers are tied to the simulator's own lifetime: Close cancels
// anything still pending, and Pay while processing is a no-op.
type PaymentSimulator struct {
	processingDelay time.Duration
	settleDelay     time.Duration
	decide          PaymentDecider
	onComplete      PaymentCompleted
	logger          *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	states map[string]PaymentStatus
}

type PaymentOption func(*PaymentSimulator)

func WithPaymentDelays(processing, settle time.Duration) PaymentOption {
	return func(s *PaymentSimulator) {
		s.processingDelay = processing
		s.settleDelay = settle
	}
}

func WithPaymentDecider(decide PaymentDecider) PaymentOption {
	return func(s *PaymentSimulator) {
		s.decide = decide
	}
}

func NewPaymentSimulator(onComplete PaymentCompleted, logger *slog.Logger, opts ...PaymentOption) *PaymentSimulator {
	ctx, cancel := context.WithCancel(context.Background())
	sim := &PaymentSimulator{
		processingDelay: 2 * time.Second,
		settleDelay:     2 * time.Second,
		decide:          func(string) error { return nil },
		onComplete:      onComplete,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		states:          make(map[string]PaymentStatus),
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Close cancels outstanding timers and waits for in-flight transitions.
func (s *PaymentSimulator) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *PaymentSimulator) Status(plotID string) PaymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.states[plotID]; ok {
		return status
	}
	return PaymentIdle
}

// Pay triggers idle→processing synchronously. A second invocation while
// processing (or after success) is a no-op and returns the current status
// rather than starting a parallel timer.
func (s *PaymentSimulator) Pay(plotID string) PaymentStatus {
	s.mu.Lock()
	current, ok := s.states[plotID]
	if ok && current != PaymentIdle {
		s.mu.Unlock()
		return current
	}
	s.states[plotID] = PaymentProcessing
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(plotID)
	return PaymentProcessing
}

// Retry resets a failed payment back to idle. It has no effect in any other
// state.
func (s *PaymentSimulator) Retry(plotID string) PaymentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[plotID] == PaymentFailed {
		s.states[plotID] = PaymentIdle
	}
	if status, ok := s.states[plotID]; ok {
		return status
	}
	return PaymentIdle
}

func (s *PaymentSimulator) run(plotID string) {
	defer s.wg.Done()

	if !s.sleep(s.processingDelay) {
		return
	}

	if err := s.decide(plotID); err != nil {
		s.setStatus(plotID, PaymentFailed)
		s.logger.Warn("payment_failed", "plot_id", plotID, "error", err)
		return
	}
	s.setStatus(plotID, PaymentSuccess)
	s.logger.Info("payment_succeeded", "plot_id", plotID, "fee", domain.ListingFee)

	if !s.sleep(s.settleDelay) {
		return
	}
	if err := s.onComplete(s.ctx, plotID); err != nil {
		s.logger.Error("payment_completion", "plot_id", plotID, "error", err)
	}
}

func (s *PaymentSimulator) setStatus(plotID string, status PaymentStatus) {
	s.mu.Lock()
	s.states[plotID] = status
	s.mu.Unlock()
}

func (s *PaymentSimulator) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

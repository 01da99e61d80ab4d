// Package docintel is the automated document pre-screening stage of the
// verification pipeline. The checks are simulated: there is no real OCR or
// fraud model behind them, only structural validation plus a configurable
// latency so the pipeline behaves like it is calling one.
package docintel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type Analyzer struct {
	latency time.Duration
	logger  *slog.Logger
}

func New(latency time.Duration, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{latency: latency, logger: logger}
}

func (a *Analyzer) Analyze(ctx context.Context, doc domain.Document) (domain.AICheckStatus, string, error) {
	if err := a.simulateLatency(ctx); err != nil {
		return domain.AICheckPending, "", err
	}

	if !doc.DocumentType.Valid() {
		a.logger.Warn("document_check_failed", "document_id", doc.ID, "type", string(doc.DocumentType))
		return domain.AICheckFailed, fmt.Sprintf("unrecognized document type: %s", doc.DocumentType), nil
	}
	if doc.StorageKey == "" {
		a.logger.Warn("document_check_failed", "document_id", doc.ID, "reason", "missing file")
		return domain.AICheckFailed, "document file is missing", nil
	}

	a.logger.Debug("document_check_passed", "document_id", doc.ID, "type", string(doc.DocumentType))
	return domain.AICheckPassed, "", nil
}

func (a *Analyzer) simulateLatency(ctx context.Context) error {
	if a.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(a.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

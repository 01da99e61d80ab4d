// Package registry simulates the government land-records lookup used for
// ownership verification. Calls go through the resilience executor the way a
// real upstream dependency would.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/infrastructure/resilience"
)

const nationalIDLength = 12

type Client struct {
	latency  time.Duration
	executor *resilience.Executor
	logger   *slog.Logger
}

func New(latency time.Duration, executor *resilience.Executor, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{latency: latency, executor: executor, logger: logger}
}

// VerifyOwner checks the listing's claimed owner against the record of
// ownership. The record here is the listing's own property-owner field, so a
// mismatch that slipped past the wizard still gets caught.
func (c *Client) VerifyOwner(ctx context.Context, plot *domain.Plot, doc domain.Document) (domain.GovtCheckStatus, string, error) {
	var status domain.GovtCheckStatus
	var reason string

	call := func(ctx context.Context) error {
		if err := c.simulateLatency(ctx); err != nil {
			return err
		}
		status, reason = c.check(plot, doc)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "registry.verify_owner", call, classifyRegistryError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.GovtCheckPending, "", fmt.Errorf("registry lookup: %w", err)
	}

	if status == domain.GovtCheckFailed {
		c.logger.Warn("registry_check_failed", "plot_id", plot.ID, "document_id", doc.ID, "reason", reason)
	}
	return status, reason, nil
}

func (c *Client) check(plot *domain.Plot, doc domain.Document) (domain.GovtCheckStatus, string) {
	id := digitsOnly(plot.OwnerNationalID)
	if len(id) != nationalIDLength {
		return domain.GovtCheckFailed, "national id not found in registry"
	}
	if !strings.EqualFold(strings.TrimSpace(plot.OwnerName), strings.TrimSpace(plot.PropertyOwnerName)) {
		return domain.GovtCheckFailed, "registered owner does not match the declared owner"
	}
	if doc.DocumentType == domain.DocTitleDeed && strings.TrimSpace(plot.LocationAddress) == "" {
		return domain.GovtCheckFailed, "title deed has no registered property address"
	}
	return domain.GovtCheckVerified, ""
}

func (c *Client) simulateLatency(ctx context.Context) error {
	if c.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(c.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func classifyRegistryError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	// Context cancellation is the caller giving up, not the registry failing.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{Retry: false, CountAsFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Classification{Retry: true, CountAsFailure: true}
	}
	return resilience.Classification{Retry: true, CountAsFailure: true}
}

package usecase

import (
	"context"
	"fmt"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

// PublishListingUseCase moves a paid-for draft into the verification
// pipeline: the listing becomes pending_verification and an event is handed
// to the worker queue.
type PublishListingUseCase struct {
	repo  ports.PlotRepository
	queue ports.ListingQueue
}

func NewPublishListingUseCase(repo ports.PlotRepository, queue ports.ListingQueue) *PublishListingUseCase {
	return &PublishListingUseCase{repo: repo, queue: queue}
}

func (uc *PublishListingUseCase) Publish(ctx context.Context, plotID string) error {
	plot, err := uc.repo.GetByID(ctx, plotID)
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}
	if plot.Status != domain.PlotDraft {
		return domain.WrapError(domain.ErrConflict, "publish listing",
			fmt.Errorf("listing %s is %s, expected draft", plotID, plot.Status))
	}

	if err := uc.repo.UpdateStatus(ctx, plotID, domain.PlotPendingVerification); err != nil {
		return fmt.Errorf("mark pending verification: %w", err)
	}
	if err := uc.queue.PublishListingSubmitted(ctx, plotID); err != nil {
		return fmt.Errorf("publish verification event: %w", err)
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

// VerifyListingUseCase runs the document verification pipeline for a
// submitted listing: an automated document analysis followed by a government
// registry ownership check. Any failed document rejects the whole listing.
type VerifyListingUseCase struct {
	repo     ports.PlotRepository
	analyzer ports.DocumentAnalyzer
	registry ports.LandRegistry
	now      func() time.Time
}

func NewVerifyListingUseCase(
	repo ports.PlotRepository,
	analyzer ports.DocumentAnalyzer,
	registry ports.LandRegistry,
) *VerifyListingUseCase {
	return &VerifyListingUseCase{
		repo:     repo,
		analyzer: analyzer,
		registry: registry,
		now:      time.Now,
	}
}

func (uc *VerifyListingUseCase) VerifyListing(ctx context.Context, plotID string) error {
	plot, err := uc.repo.GetByID(ctx, plotID)
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	if err := uc.repo.UpdateVerification(ctx, plotID, domain.VerificationInProgress, ""); err != nil {
		return fmt.Errorf("set verification=in_progress: %w", err)
	}

	rejected := false
	for _, doc := range plot.Documents {
		docRejected, err := uc.checkDocument(ctx, plot, doc)
		if err != nil {
			return err
		}
		rejected = rejected || docRejected
	}

	if rejected {
		if err := uc.repo.UpdateVerification(ctx, plotID, domain.VerificationRejected, ""); err != nil {
			return fmt.Errorf("set verification=rejected: %w", err)
		}
		return nil
	}

	if err := uc.repo.UpdateVerification(ctx, plotID, domain.VerificationVerified, plot.OwnershipHash()); err != nil {
		return fmt.Errorf("set verification=verified: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, plotID, domain.PlotVerified); err != nil {
		return fmt.Errorf("set status=verified: %w", err)
	}
	return nil
}

func (uc *VerifyListingUseCase) checkDocument(ctx context.Context, plot *domain.Plot, doc domain.Document) (bool, error) {
	aiStatus, aiReason, err := uc.analyzer.Analyze(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("analyze document %s: %w", doc.ID, err)
	}
	doc.AICheckStatus = aiStatus
	if aiStatus == domain.AICheckFailed {
		doc.VerificationStatus = domain.VerificationRejected
		doc.RejectionReason = aiReason
		if err := uc.repo.UpdateDocument(ctx, doc); err != nil {
			return false, fmt.Errorf("save document checks: %w", err)
		}
		return true, nil
	}

	govtStatus, govtReason, err := uc.registry.VerifyOwner(ctx, plot, doc)
	if err != nil {
		return false, fmt.Errorf("registry check for document %s: %w", doc.ID, err)
	}
	doc.GovtCheckStatus = govtStatus
	if govtStatus == domain.GovtCheckFailed {
		doc.VerificationStatus = domain.VerificationRejected
		doc.RejectionReason = govtReason
		if err := uc.repo.UpdateDocument(ctx, doc); err != nil {
			return false, fmt.Errorf("save document checks: %w", err)
		}
		return true, nil
	}

	verifiedAt := uc.now().UTC()
	doc.VerificationStatus = domain.VerificationVerified
	doc.VerifiedAt = &verifiedAt
	if err := uc.repo.UpdateDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("save document checks: %w", err)
	}
	return false, nil
}

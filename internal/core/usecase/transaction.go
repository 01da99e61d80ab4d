package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terravilla/marketplace/internal/core/domain"
	"github.com/terravilla/marketplace/internal/core/ports"
)

// TransactionUseCase drives the negotiation flow between a buyer and a
// seller: interested → negotiating → escrow → completed, with cancellation
// from any non-terminal state. Escrow itself moves pending → funded →
// released; release completes the deal and marks the plot sold.
type TransactionUseCase struct {
	transactions ports.TransactionRepository
	plots        ports.PlotRepository
	now          func() time.Time
}

func NewTransactionUseCase(transactions ports.TransactionRepository, plots ports.PlotRepository) *TransactionUseCase {
	return &TransactionUseCase{
		transactions: transactions,
		plots:        plots,
		now:          time.Now,
	}
}

func (uc *TransactionUseCase) ExpressInterest(ctx context.Context, plotID, buyerID string, offerPrice *int64) (*domain.Transaction, error) {
	plot, err := uc.plots.GetByID(ctx, plotID)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	if plot.SellerID == buyerID {
		return nil, domain.NewValidationError("buyer_id", "sellers cannot express interest in their own listing")
	}
	if plot.Status != domain.PlotVerified {
		return nil, domain.WrapError(domain.ErrConflict, "express interest",
			fmt.Errorf("listing %s is %s, only verified listings accept offers", plotID, plot.Status))
	}

	now := uc.now().UTC()
	tx := &domain.Transaction{
		ID:         uuid.NewString(),
		PlotID:     plotID,
		BuyerID:    buyerID,
		SellerID:   plot.SellerID,
		Status:     domain.TransactionInterested,
		OfferPrice: offerPrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (uc *TransactionUseCase) Negotiate(ctx context.Context, txID string, offerPrice int64) (*domain.Transaction, error) {
	if offerPrice <= 0 {
		return nil, domain.NewValidationError("offer_price", "offer price must be a positive amount")
	}
	return uc.transition(ctx, txID, func(tx *domain.Transaction) error {
		if tx.Status != domain.TransactionInterested && tx.Status != domain.TransactionNegotiating {
			return transitionError(tx, "negotiate")
		}
		tx.Status = domain.TransactionNegotiating
		tx.OfferPrice = &offerPrice
		return nil
	})
}

func (uc *TransactionUseCase) OpenEscrow(ctx context.Context, txID string, finalPrice int64) (*domain.Transaction, error) {
	if finalPrice <= 0 {
		return nil, domain.NewValidationError("final_price", "final price must be a positive amount")
	}
	return uc.transition(ctx, txID, func(tx *domain.Transaction) error {
		if tx.Status != domain.TransactionNegotiating {
			return transitionError(tx, "open escrow")
		}
		tx.Status = domain.TransactionEscrow
		tx.EscrowStatus = domain.EscrowPending
		tx.FinalPrice = &finalPrice
		return nil
	})
}

func (uc *TransactionUseCase) FundEscrow(ctx context.Context, txID string) (*domain.Transaction, error) {
	return uc.transition(ctx, txID, func(tx *domain.Transaction) error {
		if tx.Status != domain.TransactionEscrow || tx.EscrowStatus != domain.EscrowPending {
			return transitionError(tx, "fund escrow")
		}
		tx.EscrowStatus = domain.EscrowFunded
		return nil
	})
}

// ReleaseEscrow completes the deal: funds release, ownership transfer is
// stamped with a content hash, and the plot becomes sold.
func (uc *TransactionUseCase) ReleaseEscrow(ctx context.Context, txID string) (*domain.Transaction, error) {
	tx, err := uc.transition(ctx, txID, func(tx *domain.Transaction) error {
		if tx.Status != domain.TransactionEscrow || tx.EscrowStatus != domain.EscrowFunded {
			return transitionError(tx, "release escrow")
		}
		transferredAt := uc.now().UTC()
		tx.Status = domain.TransactionCompleted
		tx.EscrowStatus = domain.EscrowReleased
		tx.OwnershipTransferredAt = &transferredAt
		tx.BlockchainTransferHash = transferHash(tx, transferredAt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.plots.UpdateStatus(ctx, tx.PlotID, domain.PlotSold); err != nil {
		return nil, fmt.Errorf("mark plot sold: %w", err)
	}
	return tx, nil
}

func (uc *TransactionUseCase) Cancel(ctx context.Context, txID string) (*domain.Transaction, error) {
	return uc.transition(ctx, txID, func(tx *domain.Transaction) error {
		if tx.Status == domain.TransactionCompleted || tx.Status == domain.TransactionCancelled {
			return transitionError(tx, "cancel")
		}
		tx.Status = domain.TransactionCancelled
		return nil
	})
}

func (uc *TransactionUseCase) GetByID(ctx context.Context, txID string) (*domain.Transaction, error) {
	tx, err := uc.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	return tx, nil
}

func (uc *TransactionUseCase) transition(ctx context.Context, txID string, apply func(*domain.Transaction) error) (*domain.Transaction, error) {
	tx, err := uc.transactions.GetByID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if err := apply(tx); err != nil {
		return nil, err
	}
	tx.UpdatedAt = uc.now().UTC()
	if err := uc.transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return tx, nil
}

func transitionError(tx *domain.Transaction, action string) error {
	return domain.WrapError(domain.ErrConflict, action,
		fmt.Errorf("transaction %s is %s", tx.ID, tx.Status))
}

func transferHash(tx *domain.Transaction, at time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%d",
		tx.ID, tx.PlotID, tx.BuyerID, tx.SellerID, at.UnixNano()))
	return "0x" + hex.EncodeToString(sum[:])
}

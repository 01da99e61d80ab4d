package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	plot_id TEXT NOT NULL,
	buyer_id TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	status TEXT NOT NULL,
	offer_price BIGINT,
	final_price BIGINT,
	escrow_status TEXT,
	ownership_transferred_at TIMESTAMPTZ,
	blockchain_transfer_hash TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_plot ON transactions(plot_id);
`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute transactions ddl: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (
	id, plot_id, buyer_id, seller_id, status, offer_price, final_price,
	escrow_status, ownership_transferred_at, blockchain_transfer_hash, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		tx.ID, tx.PlotID, tx.BuyerID, tx.SellerID, string(tx.Status), tx.OfferPrice, tx.FinalPrice,
		nullableEscrow(tx.EscrowStatus), tx.OwnershipTransferredAt, tx.BlockchainTransferHash, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, plot_id, buyer_id, seller_id, status, offer_price, final_price,
       escrow_status, ownership_transferred_at, blockchain_transfer_hash, created_at, updated_at
FROM transactions
WHERE id = $1
`, id)

	var tx domain.Transaction
	var status string
	var escrow, transferHash sql.NullString

	err := row.Scan(
		&tx.ID, &tx.PlotID, &tx.BuyerID, &tx.SellerID, &status, &tx.OfferPrice, &tx.FinalPrice,
		&escrow, &tx.OwnershipTransferredAt, &transferHash, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get transaction", fmt.Errorf("transaction: %s", id))
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	tx.Status = domain.TransactionStatus(status)
	tx.EscrowStatus = domain.EscrowStatus(escrow.String)
	tx.BlockchainTransferHash = transferHash.String
	return &tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE transactions
SET status = $2, offer_price = $3, final_price = $4, escrow_status = $5,
    ownership_transferred_at = $6, blockchain_transfer_hash = $7, updated_at = $8
WHERE id = $1
`,
		tx.ID, string(tx.Status), tx.OfferPrice, tx.FinalPrice, nullableEscrow(tx.EscrowStatus),
		tx.OwnershipTransferredAt, tx.BlockchainTransferHash, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(result, "update transaction", tx.ID)
}

func nullableEscrow(status domain.EscrowStatus) any {
	if status == "" {
		return nil
	}
	return string(status)
}

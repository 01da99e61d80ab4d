package domain

import "time"

type TransactionStatus string

const (
	TransactionInterested  TransactionStatus = "interested"
	TransactionNegotiating TransactionStatus = "negotiating"
	TransactionEscrow      TransactionStatus = "escrow"
	TransactionCompleted   TransactionStatus = "completed"
	TransactionCancelled   TransactionStatus = "cancelled"
)

type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowFunded   EscrowStatus = "funded"
	EscrowReleased EscrowStatus = "released"
)

type Transaction struct {
	ID                     string            `json:"id"`
	PlotID                 string            `json:"plot_id"`
	BuyerID                string            `json:"buyer_id"`
	SellerID               string            `json:"seller_id"`
	Status                 TransactionStatus `json:"status"`
	OfferPrice             *int64            `json:"offer_price,omitempty"`
	FinalPrice             *int64            `json:"final_price,omitempty"`
	EscrowStatus           EscrowStatus      `json:"escrow_status,omitempty"`
	OwnershipTransferredAt *time.Time        `json:"ownership_transferred_at,omitempty"`
	BlockchainTransferHash string            `json:"blockchain_transfer_hash,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

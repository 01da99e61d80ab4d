package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

type PlotStatus string

const (
	PlotDraft               PlotStatus = "draft"
	PlotPendingVerification PlotStatus = "pending_verification"
	PlotVerified            PlotStatus = "verified"
	PlotSold                PlotStatus = "sold"
)

type VerificationStatus string

const (
	VerificationPending    VerificationStatus = "pending"
	VerificationInProgress VerificationStatus = "in_progress"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

type Plot struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	SellerName  string `json:"seller_name,omitempty"`
	SellerPhone string `json:"seller_phone,omitempty"`

	OwnerName         string `json:"owner_name"`
	OwnerNationalID   string `json:"owner_national_id"`
	PropertyOwnerName string `json:"property_owner_name"`
	OwnerVerified     bool   `json:"owner_verified"`

	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	LocationAddress string   `json:"location_address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`

	AreaSqft     float64 `json:"area_sqft"`
	Price        int64   `json:"price"`
	PricePerSqft int64   `json:"price_per_sqft"`

	Status             PlotStatus         `json:"status"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	BlockchainHash     string             `json:"blockchain_hash,omitempty"`

	Images    []string   `json:"images"`
	Documents []Document `json:"documents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPlot builds a listing with the denormalized price-per-sqft derived from
// price and area. Callers never supply it directly; the data layer stores
// whatever this computes.
func NewPlot(id, sellerID, title, address, city, state string, areaSqft float64, price int64, now time.Time) Plot {
	return Plot{
		ID:                 id,
		SellerID:           sellerID,
		Title:              title,
		LocationAddress:    address,
		City:               city,
		State:              state,
		AreaSqft:           areaSqft,
		Price:              price,
		PricePerSqft:       DerivePricePerSqft(price, areaSqft),
		Status:             PlotDraft,
		VerificationStatus: VerificationPending,
		Images:             []string{},
		Documents:          []Document{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func DerivePricePerSqft(price int64, areaSqft float64) int64 {
	if areaSqft <= 0 {
		return 0
	}
	return int64(math.Round(float64(price) / areaSqft))
}

// OwnershipHash is the blockchain-style fingerprint assigned when a listing
// passes verification. It is a plain content hash, not a ledger entry.
func (p *Plot) OwnershipHash() string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%s", p.ID, p.OwnerNationalID, p.OwnerName, p.LocationAddress, p.City))
	return "0x" + hex.EncodeToString(sum[:])
}

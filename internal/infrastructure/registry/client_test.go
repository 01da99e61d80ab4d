package registry

import (
	"context"
	"testing"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func registeredPlot() *domain.Plot {
	return &domain.Plot{
		ID:                "plot-1",
		OwnerName:         "Asha Rao",
		OwnerNationalID:   "123456789012",
		PropertyOwnerName: "Asha Rao",
		LocationAddress:   "Survey 42, Whitefield",
	}
}

func titleDeed() domain.Document {
	return domain.Document{
		ID:           "doc-1",
		DocumentType: domain.DocTitleDeed,
		StorageKey:   "plots/p1/documents/deed.pdf",
	}
}

func TestVerifyOwnerMatchingRecord(t *testing.T) {
	client := New(0, nil, nil)

	status, reason, err := client.VerifyOwner(context.Background(), registeredPlot(), titleDeed())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckVerified || reason != "" {
		t.Fatalf("expected verified, got %s (%q)", status, reason)
	}
}

func TestVerifyOwnerRejectsShortNationalID(t *testing.T) {
	client := New(0, nil, nil)
	plot := registeredPlot()
	plot.OwnerNationalID = "1234"

	status, reason, err := client.VerifyOwner(context.Background(), plot, titleDeed())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckFailed || reason != "national id not found in registry" {
		t.Fatalf("expected id failure, got %s (%q)", status, reason)
	}
}

func TestVerifyOwnerComparesNamesLoosely(t *testing.T) {
	client := New(0, nil, nil)

	plot := registeredPlot()
	plot.OwnerName = "  asha rao  "
	status, _, err := client.VerifyOwner(context.Background(), plot, titleDeed())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckVerified {
		t.Fatalf("trimmed case-insensitive match must verify, got %s", status)
	}

	plot.OwnerName = "Ravi Rao"
	status, reason, err := client.VerifyOwner(context.Background(), plot, titleDeed())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckFailed || reason != "registered owner does not match the declared owner" {
		t.Fatalf("expected owner mismatch, got %s (%q)", status, reason)
	}
}

func TestVerifyOwnerRequiresDeedAddress(t *testing.T) {
	client := New(0, nil, nil)
	plot := registeredPlot()
	plot.LocationAddress = "   "

	status, reason, err := client.VerifyOwner(context.Background(), plot, titleDeed())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckFailed || reason != "title deed has no registered property address" {
		t.Fatalf("expected address failure, got %s (%q)", status, reason)
	}

	// Non-deed documents do not carry the address requirement.
	doc := titleDeed()
	doc.DocumentType = domain.DocTaxReceipt
	status, _, err = client.VerifyOwner(context.Background(), plot, doc)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != domain.GovtCheckVerified {
		t.Fatalf("tax receipt must not require address, got %s", status)
	}
}

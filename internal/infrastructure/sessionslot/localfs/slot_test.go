package localfs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func newSlot(t *testing.T) *Slot {
	t.Helper()
	slot, err := New(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("new slot: %v", err)
	}
	return slot
}

func TestLoadEmptySlotMeansLoggedOut(t *testing.T) {
	slot := newSlot(t)

	user, ok, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || user != nil {
		t.Fatalf("missing file must read as logged out, got %+v", user)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	slot := newSlot(t)
	ctx := context.Background()

	stored := domain.User{
		ID:        "1",
		FullName:  "John Doe",
		Email:     "john@example.com",
		KYCStatus: domain.KYCVerified,
		UserType:  domain.UserTypeBoth,
	}
	if err := slot.Save(ctx, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, ok, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected stored identity")
	}
	if user.ID != stored.ID || user.Email != stored.Email || user.KYCStatus != stored.KYCStatus {
		t.Fatalf("identity mismatch: %+v", user)
	}
}

func TestSaveOverwritesPreviousIdentity(t *testing.T) {
	slot := newSlot(t)
	ctx := context.Background()

	_ = slot.Save(ctx, domain.User{ID: "old"})
	if err := slot.Save(ctx, domain.User{ID: "new"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, _, _ := slot.Load(ctx)
	if user.ID != "new" {
		t.Fatalf("expected latest identity, got %s", user.ID)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	slot := newSlot(t)
	ctx := context.Background()

	_ = slot.Save(ctx, domain.User{ID: "1"})
	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("second clear must be a no-op, got %v", err)
	}

	if _, ok, _ := slot.Load(ctx); ok {
		t.Fatalf("cleared slot must read as logged out")
	}
}

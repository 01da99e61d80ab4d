package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/terravilla/marketplace/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*PlotRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &PlotRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, seller_id, seller_name, seller_phone").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE plots").
		WithArgs("missing", string(domain.PlotVerified), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.PlotVerified)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateRecomputesDerivedRateAndStoresDocuments(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	plot := domain.NewPlot("plot-1", "seller-1", "Corner plot", "Survey 42", "Bengaluru", "Karnataka", 2400, 4_800_000, now)
	// A stale staged value must be overwritten by the derived rate.
	plot.PricePerSqft = 999
	plot.Documents = []domain.Document{{
		ID:                 "doc-1",
		PlotID:             "plot-1",
		DocumentType:       domain.DocTitleDeed,
		StorageKey:         "plots/staging/seller-1/documents/deed.pdf",
		VerificationStatus: domain.VerificationPending,
		AICheckStatus:      domain.AICheckPending,
		GovtCheckStatus:    domain.GovtCheckPending,
		CreatedAt:          now,
	}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO plots").
		WithArgs(
			"plot-1", "seller-1", "", "",
			"", "", "", false,
			"Corner plot", "", "Survey 42", "Bengaluru", "Karnataka", nil, nil,
			2400.0, int64(4_800_000), int64(2000), string(domain.PlotDraft), string(domain.VerificationPending), "",
			sqlmock.AnyArg(), now, now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO plot_documents").
		WithArgs(
			"doc-1", "plot-1", string(domain.DocTitleDeed), "plots/staging/seller-1/documents/deed.pdf",
			string(domain.VerificationPending), string(domain.AICheckPending), string(domain.GovtCheckPending),
			nil, "", now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), &plot); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateVerificationKeepsHashWhenEmpty(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	// Empty hash argument: the CASE expression must keep the stored value.
	mock.ExpectExec("UPDATE plots").
		WithArgs("plot-1", string(domain.VerificationInProgress), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateVerification(context.Background(), "plot-1", domain.VerificationInProgress, ""); err != nil {
		t.Fatalf("update verification: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListPreservesInsertionOrder(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "seller_id", "seller_name", "seller_phone",
		"owner_name", "owner_national_id", "property_owner_name", "owner_verified",
		"title", "description", "location_address", "city", "state", "latitude", "longitude",
		"area_sqft", "price", "price_per_sqft", "status", "verification_status", "blockchain_hash",
		"images", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(columns)
	for _, id := range []string{"p1", "p2"} {
		rows.AddRow(
			id, "seller-1", "Asha Rao", "+91 9000000001",
			"Asha Rao", "123456789012", "Asha Rao", true,
			"Plot "+id, "", "Addr", "Bengaluru", "Karnataka", nil, nil,
			1000.0, int64(1_000_000), int64(1000), string(domain.PlotVerified), string(domain.VerificationVerified), "0xabc",
			[]byte(`[]`), now, now,
		)
	}

	mock.ExpectQuery("SELECT id, seller_id, seller_name, seller_phone").WillReturnRows(rows)
	for range 2 {
		mock.ExpectQuery("SELECT id, plot_id, document_type, storage_key").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "plot_id", "document_type", "storage_key", "verification_status",
				"ai_check_status", "govt_check_status", "verified_at", "rejection_reason", "created_at",
			}))
	}

	plots, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(plots) != 2 || plots[0].ID != "p1" || plots[1].ID != "p2" {
		t.Fatalf("unexpected order: %+v", plots)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

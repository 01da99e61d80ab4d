package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/terravilla/marketplace/internal/core/domain"
)

type PlotRepository struct {
	db *sql.DB
}

func NewPlotRepository(db *sql.DB) *PlotRepository {
	return &PlotRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PlotRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026040201)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS plots (
	seq BIGSERIAL,
	id TEXT PRIMARY KEY,
	seller_id TEXT NOT NULL,
	seller_name TEXT,
	seller_phone TEXT,
	owner_name TEXT NOT NULL,
	owner_national_id TEXT NOT NULL,
	property_owner_name TEXT NOT NULL,
	owner_verified BOOLEAN NOT NULL DEFAULT FALSE,
	title TEXT NOT NULL,
	description TEXT,
	location_address TEXT NOT NULL,
	city TEXT NOT NULL,
	state TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	area_sqft DOUBLE PRECISION NOT NULL,
	price BIGINT NOT NULL,
	price_per_sqft BIGINT NOT NULL,
	status TEXT NOT NULL,
	verification_status TEXT NOT NULL,
	blockchain_hash TEXT,
	images JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS plot_documents (
	id TEXT PRIMARY KEY,
	plot_id TEXT NOT NULL REFERENCES plots(id),
	document_type TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	verification_status TEXT NOT NULL,
	ai_check_status TEXT NOT NULL,
	govt_check_status TEXT NOT NULL,
	verified_at TIMESTAMPTZ,
	rejection_reason TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plots_seller ON plots(seller_id);
CREATE INDEX IF NOT EXISTS idx_plots_status ON plots(status);
CREATE INDEX IF NOT EXISTS idx_plot_documents_plot ON plot_documents(plot_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PlotRepository) Create(ctx context.Context, plot *domain.Plot) error {
	imagesJSON, err := json.Marshal(plot.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The stored price_per_sqft is always the derived value; whatever the
	// caller staged is recomputed here.
	_, err = tx.ExecContext(ctx, `
INSERT INTO plots (
	id, seller_id, seller_name, seller_phone,
	owner_name, owner_national_id, property_owner_name, owner_verified,
	title, description, location_address, city, state, latitude, longitude,
	area_sqft, price, price_per_sqft, status, verification_status, blockchain_hash,
	images, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
`,
		plot.ID, plot.SellerID, plot.SellerName, plot.SellerPhone,
		plot.OwnerName, plot.OwnerNationalID, plot.PropertyOwnerName, plot.OwnerVerified,
		plot.Title, plot.Description, plot.LocationAddress, plot.City, plot.State, plot.Latitude, plot.Longitude,
		plot.AreaSqft, plot.Price, domain.DerivePricePerSqft(plot.Price, plot.AreaSqft),
		string(plot.Status), string(plot.VerificationStatus), plot.BlockchainHash,
		imagesJSON, plot.CreatedAt, plot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plot: %w", err)
	}

	for _, doc := range plot.Documents {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO plot_documents (
	id, plot_id, document_type, storage_key, verification_status,
	ai_check_status, govt_check_status, verified_at, rejection_reason, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
			doc.ID, doc.PlotID, string(doc.DocumentType), doc.StorageKey, string(doc.VerificationStatus),
			string(doc.AICheckStatus), string(doc.GovtCheckStatus), doc.VerifiedAt, doc.RejectionReason, doc.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert plot document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *PlotRepository) GetByID(ctx context.Context, id string) (*domain.Plot, error) {
	row := r.db.QueryRowContext(ctx, selectPlotColumns+`
FROM plots
WHERE id = $1
`, id)

	plot, err := scanPlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get plot", fmt.Errorf("plot: %s", id))
		}
		return nil, fmt.Errorf("scan plot: %w", err)
	}

	docs, err := r.listDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	plot.Documents = docs
	return &plot, nil
}

func (r *PlotRepository) List(ctx context.Context) ([]domain.Plot, error) {
	return r.list(ctx, selectPlotColumns+`
FROM plots
ORDER BY seq
`)
}

func (r *PlotRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Plot, error) {
	return r.list(ctx, selectPlotColumns+`
FROM plots
WHERE seller_id = $1
ORDER BY seq
`, sellerID)
}

func (r *PlotRepository) list(ctx context.Context, query string, args ...any) ([]domain.Plot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Plot, 0)
	for rows.Next() {
		plot, err := scanPlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plot: %w", err)
		}
		out = append(out, plot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plots: %w", err)
	}

	for i := range out {
		docs, err := r.listDocuments(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Documents = docs
	}
	return out, nil
}

func (r *PlotRepository) UpdateStatus(ctx context.Context, id string, status domain.PlotStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE plots
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update plot status: %w", err)
	}
	return requireRow(result, "update plot status", id)
}

func (r *PlotRepository) UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus, blockchainHash string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE plots
SET verification_status = $2,
    blockchain_hash = CASE WHEN $3 = '' THEN blockchain_hash ELSE $3 END,
    updated_at = $4
WHERE id = $1
`, id, string(status), blockchainHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update plot verification: %w", err)
	}
	return requireRow(result, "update plot verification", id)
}

func (r *PlotRepository) UpdateDocument(ctx context.Context, doc domain.Document) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE plot_documents
SET verification_status = $2, ai_check_status = $3, govt_check_status = $4,
    verified_at = $5, rejection_reason = $6
WHERE id = $1
`, doc.ID, string(doc.VerificationStatus), string(doc.AICheckStatus), string(doc.GovtCheckStatus),
		doc.VerifiedAt, doc.RejectionReason)
	if err != nil {
		return fmt.Errorf("update plot document: %w", err)
	}
	return requireRow(result, "update plot document", doc.ID)
}

func (r *PlotRepository) listDocuments(ctx context.Context, plotID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, plot_id, document_type, storage_key, verification_status,
       ai_check_status, govt_check_status, verified_at, rejection_reason, created_at
FROM plot_documents
WHERE plot_id = $1
ORDER BY created_at
`, plotID)
	if err != nil {
		return nil, fmt.Errorf("list plot documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		var docType, verification, aiStatus, govtStatus string
		var rejection sql.NullString
		if err := rows.Scan(
			&doc.ID, &doc.PlotID, &docType, &doc.StorageKey, &verification,
			&aiStatus, &govtStatus, &doc.VerifiedAt, &rejection, &doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plot document: %w", err)
		}
		doc.DocumentType = domain.DocumentType(docType)
		doc.VerificationStatus = domain.VerificationStatus(verification)
		doc.AICheckStatus = domain.AICheckStatus(aiStatus)
		doc.GovtCheckStatus = domain.GovtCheckStatus(govtStatus)
		doc.RejectionReason = rejection.String
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plot documents: %w", err)
	}
	return out, nil
}

const selectPlotColumns = `
SELECT id, seller_id, seller_name, seller_phone,
       owner_name, owner_national_id, property_owner_name, owner_verified,
       title, description, location_address, city, state, latitude, longitude,
       area_sqft, price, price_per_sqft, status, verification_status, blockchain_hash,
       images, created_at, updated_at`

type plotScanner interface {
	Scan(dest ...any) error
}

func scanPlot(row plotScanner) (domain.Plot, error) {
	var plot domain.Plot
	var sellerName, sellerPhone, description, blockchainHash sql.NullString
	var status, verification string
	var imagesRaw []byte

	err := row.Scan(
		&plot.ID, &plot.SellerID, &sellerName, &sellerPhone,
		&plot.OwnerName, &plot.OwnerNationalID, &plot.PropertyOwnerName, &plot.OwnerVerified,
		&plot.Title, &description, &plot.LocationAddress, &plot.City, &plot.State, &plot.Latitude, &plot.Longitude,
		&plot.AreaSqft, &plot.Price, &plot.PricePerSqft, &status, &verification, &blockchainHash,
		&imagesRaw, &plot.CreatedAt, &plot.UpdatedAt,
	)
	if err != nil {
		return domain.Plot{}, err
	}

	if err := json.Unmarshal(imagesRaw, &plot.Images); err != nil {
		return domain.Plot{}, fmt.Errorf("unmarshal images: %w", err)
	}
	plot.SellerName = sellerName.String
	plot.SellerPhone = sellerPhone.String
	plot.Description = description.String
	plot.BlockchainHash = blockchainHash.String
	plot.Status = domain.PlotStatus(status)
	plot.VerificationStatus = domain.VerificationStatus(verification)
	plot.Documents = []domain.Document{}
	return plot, nil
}

func requireRow(result sql.Result, operation, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, operation, fmt.Errorf("id: %s", id))
	}
	return nil
}

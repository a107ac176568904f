package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/hearth/api/internal/database"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// ErrSaleNotFound is returned when deleting a record that is not current.
var ErrSaleNotFound = errors.New("sale record not found")

const (
	entryRecorded = "recorded"
	entryDeleted  = "deleted"
)

// SaleRepository is the append-only log of sold and rented transitions.
// Rows are never updated or deleted; the current view is derived from the
// newest entry per property.
type SaleRepository interface {
	// Append validates rec against the sale record schema and appends it.
	// It supersedes any earlier record for the same property.
	Append(ctx context.Context, rec *models.SaleRecord) error

	// Delete appends a tombstone for recordID.
	// Returns ErrSaleNotFound unless recordID is the current record for its property.
	Delete(ctx context.Context, recordID string) error

	// List returns the current record of every property, newest sale first.
	// Returns an empty slice if there are none.
	List(ctx context.Context) ([]models.SaleRecord, error)

	// Get returns the record with recordID if it is current.
	// Returns nil, nil if it does not exist, was superseded or was deleted.
	Get(ctx context.Context, recordID string) (*models.SaleRecord, error)
}

// saleRepository is the PostgreSQL implementation of SaleRepository.
type saleRepository struct {
	db *database.Database
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *database.Database) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Append(ctx context.Context, rec *models.SaleRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode sale record: %w", err)
	}
	if err := ValidateSaleRecord(payload); err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO sale_log (record_id, property_id, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.PropertyID, entryRecorded, payload, rec.SaleDate,
	)
	if err != nil {
		return fmt.Errorf("failed to append sale record: %w", err)
	}
	return nil
}

func (r *saleRepository) Delete(ctx context.Context, recordID string) error {
	// The tombstone is only written when recordID is still the newest entry
	// for its property, so a stale id cannot hide a newer sale.
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sale_log (record_id, property_id, kind)
		SELECT latest.record_id, latest.property_id, $2::text
		FROM (
			SELECT DISTINCT ON (property_id) record_id, property_id, kind
			FROM sale_log
			WHERE property_id = (SELECT property_id FROM sale_log WHERE record_id = $1 LIMIT 1)
			ORDER BY property_id, seq DESC
		) latest
		WHERE latest.record_id = $1 AND latest.kind = $3`,
		recordID, entryDeleted, entryRecorded,
	)
	if err != nil {
		return fmt.Errorf("failed to delete sale record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *saleRepository) List(ctx context.Context) ([]models.SaleRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT payload
		FROM (
			SELECT DISTINCT ON (property_id) kind, payload
			FROM sale_log
			ORDER BY property_id, seq DESC
		) latest
		WHERE latest.kind = $1`,
		entryRecorded,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale log: %w", err)
	}
	defer rows.Close()

	records := []models.SaleRecord{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan sale record: %w", err)
		}
		var rec models.SaleRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode sale record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale log: %w", err)
	}

	SortNewestFirst(records)
	return records, nil
}

func (r *saleRepository) Get(ctx context.Context, recordID string) (*models.SaleRecord, error) {
	var kind, latestID string
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT record_id, kind, payload
		FROM sale_log
		WHERE property_id = (SELECT property_id FROM sale_log WHERE record_id = $1 LIMIT 1)
		ORDER BY seq DESC
		LIMIT 1`,
		recordID,
	).Scan(&latestID, &kind, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sale record: %w", err)
	}
	if latestID != recordID || kind != entryRecorded {
		return nil, nil
	}

	var rec models.SaleRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode sale record: %w", err)
	}
	return &rec, nil
}

// SortNewestFirst orders records by sale date, most recent first, breaking
// ties by id for a stable listing.
func SortNewestFirst(records []models.SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].SaleDate.Equal(records[j].SaleDate) {
			return records[i].SaleDate.After(records[j].SaleDate)
		}
		return records[i].ID > records[j].ID
	})
}

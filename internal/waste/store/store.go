package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
	"github.com/ecofuelconnect/ecofuelconnect/internal/waste"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	e.id, e.supplier_id, e.producer_id, e.waste_type, e.quantity, e.unit,
	e.estimated_weight_kg, e.quality_grade, e.status, e.created_at, e.updated_at
`

func scanEntry(s scanner) (*waste.Entry, error) {
	var entry waste.Entry

	var typeStr, unitStr, gradeStr, statusStr string

	if err := s.Scan(
		&entry.ID, &entry.SupplierID, &entry.ProducerID, &typeStr, &entry.Quantity, &unitStr,
		&entry.EstimatedWeightKg, &gradeStr, &statusStr, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	entry.WasteType = waste.Type(typeStr)
	entry.Unit = waste.Unit(unitStr)
	entry.QualityGrade = reward.Grade(gradeStr)
	entry.Status = waste.Status(statusStr)

	return &entry, nil
}

func (s *Store) CreateEntry(ctx context.Context, entry *waste.Entry) error {
	query := `
		INSERT INTO waste_entries (supplier_id, producer_id, waste_type, quantity, unit,
			estimated_weight_kg, quality_grade, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.SupplierID,
		entry.ProducerID,
		entry.WasteType,
		entry.Quantity,
		entry.Unit,
		entry.EstimatedWeightKg,
		entry.QualityGrade,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating waste entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*waste.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM waste_entries e
		WHERE e.id = $1`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, waste.ErrNotFound
		}

		return nil, fmt.Errorf("getting waste entry: %w", err)
	}

	return entry, nil
}

func (s *Store) ListEntries(ctx context.Context, filter waste.ListFilter) ([]*waste.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM waste_entries e
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.SupplierID != nil {
		query += fmt.Sprintf(" AND e.supplier_id = $%d", argIdx)

		args = append(args, *filter.SupplierID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND e.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY e.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing waste entries: %w", err)
	}
	defer rows.Close()

	var entries []*waste.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning waste entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waste entry rows: %w", err)
	}

	return entries, nil
}

// UpdateStatus is a compare-and-set on the entry's status so concurrent
// producer actions cannot clobber each other.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to waste.Status) error {
	query := `
		UPDATE waste_entries
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	res, err := s.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("updating entry status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}

	if affected == 0 {
		return waste.ErrInvalidTransition
	}

	return nil
}

func (s *Store) ProducerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = 'producer')`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking producer: %w", err)
	}

	return exists, nil
}

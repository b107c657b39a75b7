package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
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

const selectPayoutColumns = `
	p.id, p.user_id, p.coins, p.cash_amount_cents, p.payment_method, p.status,
	p.failure_reason, p.processed_at, p.created_at, p.updated_at
`

func scanPayout(s scanner) (*payout.Payout, error) {
	var p payout.Payout

	var statusStr string

	var reason sql.NullString

	if err := s.Scan(
		&p.ID, &p.UserID, &p.Coins, &p.CashAmountCents, &p.PaymentMethod, &statusStr,
		&reason, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = payout.Status(statusStr)
	p.FailureReason = reason.String

	return &p, nil
}

// CreatePayout reserves the coins and records the payout as one database
// transaction: the account row lock serializes it against every other ledger
// mutation for the same user, and the unique request key absorbs retries.
func (s *Store) CreatePayout(ctx context.Context, params payout.CreateParams) (*payout.Payout, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payout tx: %w", err)
	}
	defer dbTx.Rollback()

	if params.RequestKey != "" {
		existing, err := s.findByRequestKey(ctx, dbTx, params.RequestKey)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			return existing, nil
		}
	}

	var total int64

	err = dbTx.QueryRowContext(ctx, `
		SELECT total_coins FROM coin_accounts WHERE user_id = $1 FOR UPDATE
	`, params.UserID).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reward.ErrInsufficientBalance
		}

		return nil, fmt.Errorf("locking account: %w", err)
	}

	if total < params.Coins {
		return nil, reward.ErrInsufficientBalance
	}

	var requestKey *string
	if params.RequestKey != "" {
		requestKey = &params.RequestKey
	}

	p := &payout.Payout{
		UserID:          params.UserID,
		Coins:           params.Coins,
		CashAmountCents: params.Coins * reward.CoinValueCents,
		PaymentMethod:   params.PaymentMethod,
		Status:          payout.StatusPending,
	}

	err = dbTx.QueryRowContext(ctx, `
		INSERT INTO payouts (user_id, coins, cash_amount_cents, payment_method, status, request_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (request_key) DO NOTHING
		RETURNING id, created_at
	`, p.UserID, p.Coins, p.CashAmountCents, p.PaymentMethod, p.Status, requestKey).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// A concurrent request with the same key won the race; its
			// payout is the one that holds the debit.
			existing, findErr := s.findByRequestKey(ctx, dbTx, params.RequestKey)
			if findErr != nil {
				return nil, findErr
			}

			if existing != nil {
				return existing, nil
			}

			return nil, fmt.Errorf("inserting payout: lost conflict without winner")
		}

		return nil, fmt.Errorf("inserting payout: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO coin_transactions (user_id, amount, type, description, payout_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, p.UserID, -p.Coins, reward.TxConverted, fmt.Sprintf("Converted %d coins to cash", p.Coins), p.ID)
	if err != nil {
		return nil, fmt.Errorf("appending conversion transaction: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		UPDATE coin_accounts
		SET total_coins = total_coins - $2, updated_at = NOW()
		WHERE user_id = $1
	`, p.UserID, p.Coins)
	if err != nil {
		return nil, fmt.Errorf("debiting account: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payout: %w", err)
	}

	return p, nil
}

func (s *Store) findByRequestKey(ctx context.Context, dbTx *sql.Tx, key string) (*payout.Payout, error) {
	query := `SELECT ` + selectPayoutColumns + ` FROM payouts p WHERE p.request_key = $1`

	p, err := scanPayout(dbTx.QueryRowContext(ctx, query, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("finding payout by request key: %w", err)
	}

	return p, nil
}

// UpdateStatus validates and applies a transition while holding the payout
// row lock, so a refund can happen at most once per payout. Refunds credit
// the coins back as a bonus-typed reversal that leaves lifetime coins alone.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, to payout.Status, reason string) (*payout.Payout, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning status tx: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + selectPayoutColumns + ` FROM payouts p WHERE p.id = $1 FOR UPDATE`

	p, err := scanPayout(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payout.ErrNotFound
		}

		return nil, fmt.Errorf("locking payout: %w", err)
	}

	if !payout.CanTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", payout.ErrInvalidTransition, p.Status, to)
	}

	terminal := to == payout.StatusCompleted || to == payout.StatusFailed || to == payout.StatusCancelled

	err = dbTx.QueryRowContext(ctx, `
		UPDATE payouts
		SET status = $2,
			failure_reason = NULLIF($3, ''),
			processed_at = CASE WHEN $4 THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING processed_at, updated_at
	`, id, to, reason, terminal).Scan(&p.ProcessedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating payout status: %w", err)
	}

	p.Status = to
	p.FailureReason = reason

	if payout.RequiresRefund(to) {
		if err := s.refund(ctx, dbTx, p); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return p, nil
}

func (s *Store) refund(ctx context.Context, dbTx *sql.Tx, p *payout.Payout) error {
	var total int64

	err := dbTx.QueryRowContext(ctx, `
		SELECT total_coins FROM coin_accounts WHERE user_id = $1 FOR UPDATE
	`, p.UserID).Scan(&total)
	if err != nil {
		return fmt.Errorf("locking account for refund: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO coin_transactions (user_id, amount, type, description, payout_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, p.UserID, p.Coins, reward.TxBonus, fmt.Sprintf("Refund for %s payout", p.Status), p.ID)
	if err != nil {
		return fmt.Errorf("appending refund transaction: %w", err)
	}

	// Lifetime coins stay untouched: a refund restores spendable balance,
	// it is not new earnings.
	_, err = dbTx.ExecContext(ctx, `
		UPDATE coin_accounts
		SET total_coins = total_coins + $2, updated_at = NOW()
		WHERE user_id = $1
	`, p.UserID, p.Coins)
	if err != nil {
		return fmt.Errorf("crediting refund: %w", err)
	}

	return nil
}

func (s *Store) GetPayout(ctx context.Context, id uuid.UUID) (*payout.Payout, error) {
	query := `SELECT ` + selectPayoutColumns + ` FROM payouts p WHERE p.id = $1`

	p, err := scanPayout(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payout.ErrNotFound
		}

		return nil, fmt.Errorf("getting payout: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayouts(ctx context.Context, filter payout.ListFilter) ([]*payout.Payout, error) {
	query := `SELECT ` + selectPayoutColumns + `
		FROM payouts p
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND p.user_id = $%d", argIdx)

		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*payout.Payout

	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payout: %w", err)
		}

		payouts = append(payouts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payout rows: %w", err)
	}

	return payouts, nil
}

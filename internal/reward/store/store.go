package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

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

const selectTransactionColumns = `
	t.id, t.user_id, t.amount, t.type, t.description, t.waste_entry_id, t.payout_id, t.created_at
`

func scanTransaction(s scanner) (*reward.Transaction, error) {
	var tx reward.Transaction

	var typeStr string

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &typeStr, &tx.Description,
		&tx.WasteEntryID, &tx.PayoutID, &tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = reward.TxType(typeStr)

	return &tx, nil
}

// lockAccount creates the account row if missing and takes the row lock that
// serializes all ledger mutations for this user.
func lockAccount(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (total, lifetime int64, err error) {
	_, err = tx.ExecContext(ctx, `
		INSERT INTO coin_accounts (user_id, total_coins, lifetime_coins, created_at)
		VALUES ($1, 0, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("ensuring account: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT total_coins, lifetime_coins FROM coin_accounts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&total, &lifetime)
	if err != nil {
		return 0, 0, fmt.Errorf("locking account: %w", err)
	}

	return total, lifetime, nil
}

func (s *Store) Credit(ctx context.Context, params reward.CreditParams) (*reward.Balance, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning credit tx: %w", err)
	}
	defer dbTx.Rollback()

	total, lifetime, err := lockAccount(ctx, dbTx, params.UserID)
	if err != nil {
		return nil, err
	}

	// The partial unique index on (user_id, waste_entry_id) WHERE type =
	// 'earned' makes a repeated credit for the same waste entry insert
	// nothing; the balance update below is skipped in that case.
	var txID uuid.UUID

	err = dbTx.QueryRowContext(ctx, `
		INSERT INTO coin_transactions (user_id, amount, type, description, waste_entry_id, payout_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, waste_entry_id) WHERE type = 'earned' DO NOTHING
		RETURNING id
	`, params.UserID, params.Amount, params.Type, params.Description, params.WasteEntryID, params.PayoutID).Scan(&txID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &reward.Balance{TotalCoins: total, LifetimeCoins: lifetime}, nil
		}

		return nil, fmt.Errorf("appending transaction: %w", err)
	}

	countsTowardLifetime := params.PayoutID == nil

	var balance reward.Balance

	err = dbTx.QueryRowContext(ctx, `
		UPDATE coin_accounts
		SET total_coins = total_coins + $2,
			lifetime_coins = lifetime_coins + CASE WHEN $3 THEN $2 ELSE 0 END,
			last_earned_at = CASE WHEN $3 THEN NOW() ELSE last_earned_at END,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING total_coins, lifetime_coins
	`, params.UserID, params.Amount, countsTowardLifetime).Scan(&balance.TotalCoins, &balance.LifetimeCoins)
	if err != nil {
		return nil, fmt.Errorf("updating balance: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing credit: %w", err)
	}

	return &balance, nil
}

func (s *Store) Debit(ctx context.Context, params reward.DebitParams) (*reward.Balance, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning debit tx: %w", err)
	}
	defer dbTx.Rollback()

	var total, lifetime int64

	err = dbTx.QueryRowContext(ctx, `
		SELECT total_coins, lifetime_coins FROM coin_accounts WHERE user_id = $1 FOR UPDATE
	`, params.UserID).Scan(&total, &lifetime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reward.ErrInsufficientBalance
		}

		return nil, fmt.Errorf("locking account: %w", err)
	}

	if total < params.Amount {
		return nil, reward.ErrInsufficientBalance
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO coin_transactions (user_id, amount, type, description, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, params.UserID, -params.Amount, params.Type, params.Description)
	if err != nil {
		return nil, fmt.Errorf("appending transaction: %w", err)
	}

	var balance reward.Balance

	err = dbTx.QueryRowContext(ctx, `
		UPDATE coin_accounts
		SET total_coins = total_coins - $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING total_coins, lifetime_coins
	`, params.UserID, params.Amount).Scan(&balance.TotalCoins, &balance.LifetimeCoins)
	if err != nil {
		return nil, fmt.Errorf("updating balance: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing debit: %w", err)
	}

	return &balance, nil
}

func (s *Store) GetAccount(ctx context.Context, userID uuid.UUID) (*reward.Account, error) {
	query := `
		SELECT user_id, total_coins, lifetime_coins, last_earned_at, created_at, updated_at
		FROM coin_accounts
		WHERE user_id = $1
	`

	var account reward.Account

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID, &account.TotalCoins, &account.LifetimeCoins,
		&account.LastEarnedAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reward.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return &account, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*reward.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM coin_transactions t
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*reward.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]reward.LeaderboardEntry, error) {
	query := `
		SELECT a.user_id, u.name, u.organization, a.lifetime_coins
		FROM coin_accounts a
		JOIN users u ON u.id = a.user_id
		WHERE u.role = 'supplier'
		ORDER BY a.lifetime_coins DESC, u.name ASC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []reward.LeaderboardEntry

	for rows.Next() {
		var e reward.LeaderboardEntry

		if err := rows.Scan(&e.UserID, &e.Name, &e.Organization, &e.LifetimeCoins); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leaderboard rows: %w", err)
	}

	return entries, nil
}

func (s *Store) EnqueueReconciliation(ctx context.Context, params reward.ReconciliationParams) error {
	query := `
		INSERT INTO reward_reconciliation (user_id, waste_entry_id, coins, cause, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, params.UserID, params.WasteEntryID, params.Coins, params.Cause)
	if err != nil {
		return fmt.Errorf("enqueueing reconciliation: %w", err)
	}

	return nil
}

func (s *Store) GetReconciliation(ctx context.Context, id uuid.UUID) (*reward.Reconciliation, error) {
	query := `
		SELECT id, user_id, waste_entry_id, coins, cause, resolved_at, created_at
		FROM reward_reconciliation
		WHERE id = $1
	`

	var rec reward.Reconciliation

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &rec.WasteEntryID, &rec.Coins, &rec.Cause, &rec.ResolvedAt, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, reward.ErrNotFound
		}

		return nil, fmt.Errorf("getting reconciliation: %w", err)
	}

	return &rec, nil
}

func (s *Store) ListReconciliation(ctx context.Context) ([]*reward.Reconciliation, error) {
	query := `
		SELECT id, user_id, waste_entry_id, coins, cause, resolved_at, created_at
		FROM reward_reconciliation
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing reconciliation: %w", err)
	}
	defer rows.Close()

	var recs []*reward.Reconciliation

	for rows.Next() {
		var rec reward.Reconciliation

		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.WasteEntryID, &rec.Coins, &rec.Cause, &rec.ResolvedAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reconciliation: %w", err)
		}

		recs = append(recs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reconciliation rows: %w", err)
	}

	return recs, nil
}

func (s *Store) ResolveReconciliation(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reward_reconciliation
		SET resolved_at = NOW()
		WHERE id = $1 AND resolved_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("resolving reconciliation: %w", err)
	}

	return nil
}

package reward

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reward
type Repository interface {
	Credit(ctx context.Context, params CreditParams) (*Balance, error)
	Debit(ctx context.Context, params DebitParams) (*Balance, error)
	GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	EnqueueReconciliation(ctx context.Context, params ReconciliationParams) error
	GetReconciliation(ctx context.Context, id uuid.UUID) (*Reconciliation, error)
	ListReconciliation(ctx context.Context) ([]*Reconciliation, error)
	ResolveReconciliation(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreditParams struct {
	UserID      uuid.UUID
	Amount      int64
	Type        TxType
	Description string
	// WasteEntryID makes an earned credit idempotent: at most one earned
	// transaction may reference a given waste entry per user.
	WasteEntryID *uuid.UUID
	// PayoutID marks the credit as a payout reversal. Reversals restore
	// TotalCoins without touching LifetimeCoins.
	PayoutID *uuid.UUID
}

type DebitParams struct {
	UserID      uuid.UUID
	Amount      int64
	Type        TxType
	Description string
}

func (s *Service) Credit(ctx context.Context, params CreditParams) (*Balance, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if params.Type != TxEarned && params.Type != TxBonus {
		return nil, fmt.Errorf("credit with type %q not allowed", params.Type)
	}

	balance, err := s.repo.Credit(ctx, params)
	if err != nil {
		return nil, err
	}

	metrics.CoinsCredited.WithLabelValues(string(params.Type)).Add(float64(params.Amount))

	return balance, nil
}

func (s *Service) Debit(ctx context.Context, params DebitParams) (*Balance, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if params.Type != TxConverted && params.Type != TxPenalty {
		return nil, fmt.Errorf("debit with type %q not allowed", params.Type)
	}

	balance, err := s.repo.Debit(ctx, params)
	if err != nil {
		return nil, err
	}

	metrics.CoinsDebited.WithLabelValues(string(params.Type)).Add(float64(params.Amount))

	return balance, nil
}

// Summary is the reward overview for a single user.
type Summary struct {
	Account        Account
	CashValueCents int64
	Transactions   []*Transaction
}

// Summary returns the user's balances, cash value, and recent transactions.
// A user with no ledger account yet gets a zero summary, not an error.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID, historyLimit int) (*Summary, error) {
	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			return &Summary{Account: Account{UserID: userID}}, nil
		}

		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Account:        *account,
		CashValueCents: account.TotalCoins * CoinValueCents,
		Transactions:   txs,
	}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx, limit)
}

type ReconciliationParams struct {
	UserID       uuid.UUID
	WasteEntryID uuid.UUID
	Coins        int64
	Cause        string
}

// QueueReconciliation records a reward credit that could not be applied so
// it is operationally visible and retryable instead of silently dropped.
func (s *Service) QueueReconciliation(ctx context.Context, params ReconciliationParams) error {
	if err := s.repo.EnqueueReconciliation(ctx, params); err != nil {
		return fmt.Errorf("queueing reconciliation: %w", err)
	}

	metrics.RewardCreditFailures.Inc()

	return nil
}

func (s *Service) ListReconciliation(ctx context.Context) ([]*Reconciliation, error) {
	return s.repo.ListReconciliation(ctx)
}

// RetryReconciliation re-runs the failed credit and marks the row resolved.
// The credit carries the original waste entry id, so a retry that raced an
// earlier success is a no-op rather than a double credit.
func (s *Service) RetryReconciliation(ctx context.Context, id uuid.UUID) (*Balance, error) {
	rec, err := s.repo.GetReconciliation(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := s.Credit(ctx, CreditParams{
		UserID:       rec.UserID,
		Amount:       rec.Coins,
		Type:         TxEarned,
		Description:  "Reward reconciliation retry",
		WasteEntryID: &rec.WasteEntryID,
	})
	if err != nil {
		return nil, fmt.Errorf("retrying credit: %w", err)
	}

	if err := s.repo.ResolveReconciliation(ctx, id); err != nil {
		return nil, fmt.Errorf("resolving reconciliation: %w", err)
	}

	return balance, nil
}

package reward

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TxType classifies a coin movement.
type TxType string

const (
	TxEarned    TxType = "earned"
	TxConverted TxType = "converted"
	TxBonus     TxType = "bonus"
	TxPenalty   TxType = "penalty"
)

// CoinValueCents is the fixed conversion rate: one coin is worth 0.01
// currency units, stored as cents.
const CoinValueCents int64 = 1

var (
	ErrNotFound            = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient coin balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Account is a user's running coin balance. TotalCoins is the spendable
// balance; LifetimeCoins only ever grows.
type Account struct {
	UserID        uuid.UUID
	TotalCoins    int64
	LifetimeCoins int64
	LastEarnedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Transaction is one append-only ledger entry. Amount carries the sign:
// positive for earned/bonus, negative for converted/penalty.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Amount       int64
	Type         TxType
	Description  string
	WasteEntryID *uuid.UUID
	PayoutID     *uuid.UUID
	CreatedAt    time.Time
}

// Balance is the post-mutation snapshot returned by ledger operations.
type Balance struct {
	TotalCoins    int64
	LifetimeCoins int64
}

// LeaderboardEntry ranks a supplier by total coins earned over time.
type LeaderboardEntry struct {
	UserID        uuid.UUID
	Name          string
	Organization  string
	LifetimeCoins int64
}

// Reconciliation records a reward credit that failed after its waste entry
// was durably stored, so the credit can be retried instead of lost.
type Reconciliation struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	WasteEntryID uuid.UUID
	Coins        int64
	Cause        string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

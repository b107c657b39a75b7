package payout

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the payout lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// MinPayoutCoins is the minimum amount a user may convert at once.
const MinPayoutCoins int64 = 100

var (
	ErrNotFound          = errors.New("payout not found")
	ErrValidation        = errors.New("invalid payout request")
	ErrBelowMinimum      = errors.New("payout below minimum amount")
	ErrInvalidTransition = errors.New("invalid payout transition")
	ErrInvalidStatus     = errors.New("unknown payout status")
)

// allowedTransitions is the payout state machine. Completed, failed, and
// cancelled are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// CanTransition reports whether a payout may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// RequiresRefund reports whether entering the status must credit the coins
// back to the user's ledger. The debit happens at request time, so both
// failure and cancellation reverse it.
func RequiresRefund(to Status) bool {
	return to == StatusFailed || to == StatusCancelled
}

// Payout is a request to convert coins into a cash disbursement. Coins are
// debited from the ledger when the payout is created, not when it completes.
type Payout struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Coins           int64
	CashAmountCents int64
	PaymentMethod   string
	Status          Status
	FailureReason   string
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

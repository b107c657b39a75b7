package payout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payout
type Repository interface {
	// CreatePayout debits the ledger and inserts the payout row as one
	// atomic unit. A non-empty RequestKey makes the call idempotent:
	// retrying with the same key returns the payout created the first time.
	CreatePayout(ctx context.Context, params CreateParams) (*Payout, error)
	GetPayout(ctx context.Context, id uuid.UUID) (*Payout, error)
	ListPayouts(ctx context.Context, filter ListFilter) ([]*Payout, error)
	// UpdateStatus applies a state transition under the payout row lock and,
	// for refunding transitions, credits the coins back in the same database
	// transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, to Status, reason string) (*Payout, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID        uuid.UUID
	Coins         int64
	PaymentMethod string
	RequestKey    string
}

type ListFilter struct {
	UserID *uuid.UUID
	Status *Status
}

// Request converts part of a user's coin balance into a pending cash payout.
func (s *Service) Request(ctx context.Context, params CreateParams) (*Payout, error) {
	if params.Coins < MinPayoutCoins {
		return nil, fmt.Errorf("%w: minimum is %d coins", ErrBelowMinimum, MinPayoutCoins)
	}

	if params.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	p, err := s.repo.CreatePayout(ctx, params)
	if err != nil {
		return nil, err
	}

	metrics.PayoutTransitions.WithLabelValues(string(StatusPending)).Inc()

	return p, nil
}

var validStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusProcessing: {},
	StatusCompleted:  {},
	StatusFailed:     {},
	StatusCancelled:  {},
}

// UpdateStatus applies an administrative transition. Moving to failed or
// cancelled refunds the coins; the refund never increases lifetime coins.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, reason string) (*Payout, error) {
	if _, ok := validStatuses[to]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	p, err := s.repo.UpdateStatus(ctx, id, to, reason)
	if err != nil {
		return nil, err
	}

	metrics.PayoutTransitions.WithLabelValues(string(to)).Inc()

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payout, error) {
	return s.repo.GetPayout(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payout, error) {
	return s.repo.ListPayouts(ctx, filter)
}

// ListByUser returns the user's payout history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payout, error) {
	return s.repo.ListPayouts(ctx, ListFilter{UserID: &userID})
}

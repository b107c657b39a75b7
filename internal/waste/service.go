package waste

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/metrics"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=waste
type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	// UpdateStatus moves an entry from one status to another and reports
	// ErrInvalidTransition if the entry is no longer in the expected state.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	ProducerExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Rewards is the slice of the reward service the waste flow needs.
type Rewards interface {
	Credit(ctx context.Context, params reward.CreditParams) (*reward.Balance, error)
	QueueReconciliation(ctx context.Context, params reward.ReconciliationParams) error
}

type Service struct {
	repo    Repository
	rewards Rewards
}

func NewService(repo Repository, rewards Rewards) *Service {
	return &Service{repo: repo, rewards: rewards}
}

type LogParams struct {
	SupplierID   uuid.UUID
	ProducerID   uuid.UUID
	WasteType    Type
	Quantity     float64
	Unit         Unit
	QualityGrade reward.Grade
}

type ListFilter struct {
	SupplierID *uuid.UUID
	Status     *Status
}

// LogResult is what a supplier gets back after logging a delivery.
type LogResult struct {
	Entry       *Entry
	CoinsEarned int64
	Balance     *reward.Balance
	// RewardPending is set when the entry was stored but the ledger credit
	// failed and was queued for reconciliation.
	RewardPending bool
}

var validTypes = map[Type]struct{}{
	TypeFoodScraps:   {},
	TypeAgricultural: {},
	TypeMarketWaste:  {},
	TypeAnimalManure: {},
	TypeOtherOrganic: {},
}

var validGrades = map[reward.Grade]struct{}{
	reward.GradeExcellent: {},
	reward.GradeGood:      {},
	reward.GradeFair:      {},
	reward.GradePoor:      {},
}

func (p LogParams) validate() error {
	if _, ok := validTypes[p.WasteType]; !ok {
		return fmt.Errorf("%w: unknown waste type %q", ErrValidation, p.WasteType)
	}

	if p.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if _, ok := kgFactors[p.Unit]; !ok {
		return fmt.Errorf("%w: unknown unit %q", ErrValidation, p.Unit)
	}

	if p.QualityGrade != "" {
		if _, ok := validGrades[p.QualityGrade]; !ok {
			return fmt.Errorf("%w: unknown quality grade %q", ErrValidation, p.QualityGrade)
		}
	}

	return nil
}

// Log stores a new waste entry and credits the supplier's coin reward. The
// credit references the entry id, so a retry after a partial failure cannot
// double-credit; if the credit fails the entry stays valid and the reward is
// queued for reconciliation instead of being dropped.
func (s *Service) Log(ctx context.Context, params LogParams) (*LogResult, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	ok, err := s.repo.ProducerExists(ctx, params.ProducerID)
	if err != nil {
		return nil, fmt.Errorf("checking producer: %w", err)
	}

	if !ok {
		return nil, ErrInvalidProducer
	}

	weightKg, _ := EstimatedWeightKg(params.Quantity, params.Unit)

	entry := &Entry{
		SupplierID:        params.SupplierID,
		ProducerID:        params.ProducerID,
		WasteType:         params.WasteType,
		Quantity:          params.Quantity,
		Unit:              params.Unit,
		EstimatedWeightKg: weightKg,
		QualityGrade:      params.QualityGrade,
		Status:            StatusPending,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	metrics.WasteEntriesCreated.Inc()

	result := &LogResult{Entry: entry}

	coins := reward.CalculateCoins(weightKg, params.QualityGrade)
	if coins == 0 {
		return result, nil
	}

	result.CoinsEarned = coins

	balance, err := s.rewards.Credit(ctx, reward.CreditParams{
		UserID:       params.SupplierID,
		Amount:       coins,
		Type:         reward.TxEarned,
		Description:  fmt.Sprintf("Reward for %.1f kg of %s waste", weightKg, params.WasteType),
		WasteEntryID: &entry.ID,
	})
	if err != nil {
		slog.Error("reward credit failed after waste entry commit",
			"error", err, "entry_id", entry.ID, "supplier_id", params.SupplierID, "coins", coins)

		if qErr := s.rewards.QueueReconciliation(ctx, reward.ReconciliationParams{
			UserID:       params.SupplierID,
			WasteEntryID: entry.ID,
			Coins:        coins,
			Cause:        err.Error(),
		}); qErr != nil {
			slog.Error("failed to queue reward reconciliation", "error", qErr, "entry_id", entry.ID)
		}

		result.RewardPending = true

		return result, nil
	}

	result.Balance = balance

	return result, nil
}

// Get returns a single entry, scoped to its supplier and producer. Anyone
// else gets ErrNotFound, same as the supplier-scoped listing.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*Entry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Admin && entry.SupplierID != actor.UserID && entry.ProducerID != actor.UserID {
		return nil, ErrNotFound
	}

	return entry, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// UpdateStatus applies a confirm/reject/processed decision, enforcing the
// entry state machine. Only the entry's producer or an admin may transition
// it; suppliers cannot confirm their own deliveries.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, actor Actor) (*Entry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Admin && entry.ProducerID != actor.UserID {
		return nil, ErrForbidden
	}

	if !CanTransition(entry.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, entry.Status, to); err != nil {
		return nil, err
	}

	entry.Status = to

	return entry, nil
}

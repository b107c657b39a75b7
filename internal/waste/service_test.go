package waste_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
	"github.com/ecofuelconnect/ecofuelconnect/internal/waste"
)

func TestEstimatedWeightKg(t *testing.T) {
	type testCase struct {
		name     string
		quantity float64
		unit     waste.Unit
		want     float64
		wantOK   bool
	}

	tests := []testCase{
		{name: "Kg", quantity: 100, unit: waste.UnitKg, want: 100, wantOK: true},
		{name: "Tons", quantity: 2, unit: waste.UnitTons, want: 2000, wantOK: true},
		{name: "Bags", quantity: 5, unit: waste.UnitBags, want: 100, wantOK: true},
		{name: "CubicMeters", quantity: 1.5, unit: waste.UnitCubicMeters, want: 750, wantOK: true},
		{name: "UnknownUnit", quantity: 10, unit: "barrels", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := waste.EstimatedWeightKg(tt.quantity, tt.unit)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, waste.CanTransition(waste.StatusPending, waste.StatusConfirmed))
	assert.True(t, waste.CanTransition(waste.StatusPending, waste.StatusRejected))
	assert.True(t, waste.CanTransition(waste.StatusConfirmed, waste.StatusProcessed))
	assert.False(t, waste.CanTransition(waste.StatusProcessed, waste.StatusPending))
	assert.False(t, waste.CanTransition(waste.StatusRejected, waste.StatusConfirmed))
	assert.False(t, waste.CanTransition(waste.StatusPending, waste.StatusProcessed))
}

func validLogParams(supplierID, producerID uuid.UUID) waste.LogParams {
	return waste.LogParams{
		SupplierID:   supplierID,
		ProducerID:   producerID,
		WasteType:    waste.TypeFoodScraps,
		Quantity:     100,
		Unit:         waste.UnitKg,
		QualityGrade: reward.GradeGood,
	}
}

func TestService_Log(t *testing.T) {
	supplierID := uuid.New()
	producerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().ProducerExists(gomock.Any(), producerID).Return(true, nil)
		repo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *waste.Entry) error {
				assert.Equal(t, waste.StatusPending, entry.Status)
				assert.Equal(t, float64(100), entry.EstimatedWeightKg)
				entry.ID = uuid.New()
				return nil
			})
		rewards.EXPECT().
			Credit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params reward.CreditParams) (*reward.Balance, error) {
				// 100 kg at grade good: floor(floor(50) * 1.2) = 60
				assert.Equal(t, int64(60), params.Amount)
				assert.Equal(t, reward.TxEarned, params.Type)
				assert.Equal(t, supplierID, params.UserID)
				require.NotNil(t, params.WasteEntryID)

				return &reward.Balance{TotalCoins: 60, LifetimeCoins: 60}, nil
			})

		svc := waste.NewService(repo, rewards)
		result, err := svc.Log(context.Background(), validLogParams(supplierID, producerID))
		require.NoError(t, err)
		assert.Equal(t, int64(60), result.CoinsEarned)
		assert.Equal(t, int64(60), result.Balance.TotalCoins)
		assert.False(t, result.RewardPending)
	})

	t.Run("CreditFailureQueuesReconciliation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().ProducerExists(gomock.Any(), producerID).Return(true, nil)
		repo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *waste.Entry) error {
				entry.ID = uuid.New()
				return nil
			})
		rewards.EXPECT().
			Credit(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("db unavailable"))
		rewards.EXPECT().
			QueueReconciliation(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params reward.ReconciliationParams) error {
				assert.Equal(t, supplierID, params.UserID)
				assert.Equal(t, int64(60), params.Coins)
				return nil
			})

		svc := waste.NewService(repo, rewards)
		result, err := svc.Log(context.Background(), validLogParams(supplierID, producerID))
		require.NoError(t, err)
		assert.True(t, result.RewardPending)
		assert.Nil(t, result.Balance)
		assert.NotNil(t, result.Entry)
	})

	t.Run("ZeroCoinsSkipsCredit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().ProducerExists(gomock.Any(), producerID).Return(true, nil)
		repo.EXPECT().
			CreateEntry(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entry *waste.Entry) error {
				entry.ID = uuid.New()
				return nil
			})
		// No Credit expectation: a 1 kg delivery earns 0 coins and must not
		// produce a zero-amount transaction.

		params := validLogParams(supplierID, producerID)
		params.Quantity = 1

		svc := waste.NewService(repo, rewards)
		result, err := svc.Log(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.CoinsEarned)
		assert.Nil(t, result.Balance)
	})

	t.Run("UnknownProducer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().ProducerExists(gomock.Any(), producerID).Return(false, nil)

		svc := waste.NewService(repo, rewards)
		_, err := svc.Log(context.Background(), validLogParams(supplierID, producerID))
		assert.ErrorIs(t, err, waste.ErrInvalidProducer)
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)
		svc := waste.NewService(repo, rewards)

		bad := validLogParams(supplierID, producerID)
		bad.Quantity = -1
		_, err := svc.Log(context.Background(), bad)
		assert.ErrorIs(t, err, waste.ErrValidation)

		bad = validLogParams(supplierID, producerID)
		bad.Unit = "barrels"
		_, err = svc.Log(context.Background(), bad)
		assert.ErrorIs(t, err, waste.ErrValidation)

		bad = validLogParams(supplierID, producerID)
		bad.WasteType = "plastic"
		_, err = svc.Log(context.Background(), bad)
		assert.ErrorIs(t, err, waste.ErrValidation)

		bad = validLogParams(supplierID, producerID)
		bad.QualityGrade = "pristine"
		_, err = svc.Log(context.Background(), bad)
		assert.ErrorIs(t, err, waste.ErrValidation)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	entryID := uuid.New()
	supplierID := uuid.New()
	producerID := uuid.New()

	pendingEntry := func() *waste.Entry {
		return &waste.Entry{
			ID:         entryID,
			SupplierID: supplierID,
			ProducerID: producerID,
			Status:     waste.StatusPending,
		}
	}

	t.Run("ProducerConfirmsPending", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(pendingEntry(), nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), entryID, waste.StatusPending, waste.StatusConfirmed).
			Return(nil)

		svc := waste.NewService(repo, rewards)
		entry, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusConfirmed,
			waste.Actor{UserID: producerID})
		require.NoError(t, err)
		assert.Equal(t, waste.StatusConfirmed, entry.Status)
	})

	t.Run("SupplierCannotConfirmOwnEntry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		// No UpdateStatus expectation: ownership is rejected first.
		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(pendingEntry(), nil)

		svc := waste.NewService(repo, rewards)
		_, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusConfirmed,
			waste.Actor{UserID: supplierID})
		assert.ErrorIs(t, err, waste.ErrForbidden)
	})

	t.Run("StrangerCannotTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(pendingEntry(), nil)

		svc := waste.NewService(repo, rewards)
		_, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusRejected,
			waste.Actor{UserID: uuid.New()})
		assert.ErrorIs(t, err, waste.ErrForbidden)
	})

	t.Run("AdminMayTransitionAnyEntry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(pendingEntry(), nil)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), entryID, waste.StatusPending, waste.StatusRejected).
			Return(nil)

		svc := waste.NewService(repo, rewards)
		entry, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusRejected,
			waste.Actor{UserID: uuid.New(), Admin: true})
		require.NoError(t, err)
		assert.Equal(t, waste.StatusRejected, entry.Status)
	})

	t.Run("ProcessedIsImmutable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		entry := pendingEntry()
		entry.Status = waste.StatusProcessed

		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(entry, nil)

		svc := waste.NewService(repo, rewards)
		_, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusConfirmed,
			waste.Actor{UserID: producerID})
		assert.ErrorIs(t, err, waste.ErrInvalidTransition)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := waste.NewMockRepository(ctrl)
		rewards := waste.NewMockRewards(ctrl)

		repo.EXPECT().
			GetEntry(gomock.Any(), entryID).
			Return(nil, waste.ErrNotFound)

		svc := waste.NewService(repo, rewards)
		_, err := svc.UpdateStatus(context.Background(), entryID, waste.StatusConfirmed,
			waste.Actor{UserID: producerID})
		assert.ErrorIs(t, err, waste.ErrNotFound)
	})
}

func TestService_Get(t *testing.T) {
	entryID := uuid.New()
	supplierID := uuid.New()
	producerID := uuid.New()

	entry := &waste.Entry{
		ID:         entryID,
		SupplierID: supplierID,
		ProducerID: producerID,
		Status:     waste.StatusPending,
	}

	type testCase struct {
		name    string
		actor   waste.Actor
		wantErr error
	}

	tests := []testCase{
		{name: "Supplier", actor: waste.Actor{UserID: supplierID}},
		{name: "Producer", actor: waste.Actor{UserID: producerID}},
		{name: "Admin", actor: waste.Actor{UserID: uuid.New(), Admin: true}},
		{name: "Stranger", actor: waste.Actor{UserID: uuid.New()}, wantErr: waste.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := waste.NewMockRepository(ctrl)
			rewards := waste.NewMockRewards(ctrl)

			repo.EXPECT().
				GetEntry(gomock.Any(), entryID).
				Return(entry, nil)

			svc := waste.NewService(repo, rewards)
			got, err := svc.Get(context.Background(), entryID, tt.actor)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, entryID, got.ID)
		})
	}
}

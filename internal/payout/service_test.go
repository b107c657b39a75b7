package payout_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

func TestCanTransition(t *testing.T) {
	type testCase struct {
		name string
		from payout.Status
		to   payout.Status
		want bool
	}

	tests := []testCase{
		{name: "PendingToProcessing", from: payout.StatusPending, to: payout.StatusProcessing, want: true},
		{name: "PendingToFailed", from: payout.StatusPending, to: payout.StatusFailed, want: true},
		{name: "PendingToCancelled", from: payout.StatusPending, to: payout.StatusCancelled, want: true},
		{name: "ProcessingToCompleted", from: payout.StatusProcessing, to: payout.StatusCompleted, want: true},
		{name: "ProcessingToFailed", from: payout.StatusProcessing, to: payout.StatusFailed, want: true},
		{name: "PendingToCompleted", from: payout.StatusPending, to: payout.StatusCompleted, want: false},
		{name: "CompletedIsTerminal", from: payout.StatusCompleted, to: payout.StatusFailed, want: false},
		{name: "FailedIsTerminal", from: payout.StatusFailed, to: payout.StatusPending, want: false},
		{name: "CancelledIsTerminal", from: payout.StatusCancelled, to: payout.StatusProcessing, want: false},
		{name: "ProcessingToCancelled", from: payout.StatusProcessing, to: payout.StatusCancelled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payout.CanTransition(tt.from, tt.to))
		})
	}
}

func TestRequiresRefund(t *testing.T) {
	assert.True(t, payout.RequiresRefund(payout.StatusFailed))
	assert.True(t, payout.RequiresRefund(payout.StatusCancelled))
	assert.False(t, payout.RequiresRefund(payout.StatusCompleted))
	assert.False(t, payout.RequiresRefund(payout.StatusProcessing))
}

func TestService_Request(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		params    payout.CreateParams
		setupMock func(m *payout.MockRepository)
		wantErr   error
		check     func(t *testing.T, p *payout.Payout)
	}

	tests := []testCase{
		{
			name: "Success",
			params: payout.CreateParams{
				UserID:        userID,
				Coins:         100,
				PaymentMethod: "mobile_money",
			},
			setupMock: func(m *payout.MockRepository) {
				m.EXPECT().
					CreatePayout(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params payout.CreateParams) (*payout.Payout, error) {
						return &payout.Payout{
							ID:              uuid.New(),
							UserID:          params.UserID,
							Coins:           params.Coins,
							CashAmountCents: params.Coins * reward.CoinValueCents,
							PaymentMethod:   params.PaymentMethod,
							Status:          payout.StatusPending,
						}, nil
					})
			},
			check: func(t *testing.T, p *payout.Payout) {
				assert.Equal(t, payout.StatusPending, p.Status)
				assert.Equal(t, int64(100), p.CashAmountCents) // 100 coins = 1.00
			},
		},
		{
			name: "BelowMinimum",
			params: payout.CreateParams{
				UserID:        userID,
				Coins:         99,
				PaymentMethod: "mobile_money",
			},
			wantErr: payout.ErrBelowMinimum,
		},
		{
			name: "MissingPaymentMethod",
			params: payout.CreateParams{
				UserID: userID,
				Coins:  100,
			},
			wantErr: payout.ErrValidation,
		},
		{
			name: "InsufficientBalance",
			params: payout.CreateParams{
				UserID:        userID,
				Coins:         100,
				PaymentMethod: "mobile_money",
			},
			setupMock: func(m *payout.MockRepository) {
				m.EXPECT().
					CreatePayout(gomock.Any(), gomock.Any()).
					Return(nil, reward.ErrInsufficientBalance)
			},
			wantErr: reward.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := payout.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := payout.NewService(repo)
			got, err := svc.Request(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	payoutID := uuid.New()

	t.Run("ValidTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := payout.NewMockRepository(ctrl)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), payoutID, payout.StatusProcessing, "").
			Return(&payout.Payout{ID: payoutID, Status: payout.StatusProcessing}, nil)

		svc := payout.NewService(repo)
		p, err := svc.UpdateStatus(context.Background(), payoutID, payout.StatusProcessing, "")
		require.NoError(t, err)
		assert.Equal(t, payout.StatusProcessing, p.Status)
	})

	t.Run("UnknownStatusRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := payout.NewMockRepository(ctrl)

		svc := payout.NewService(repo)
		_, err := svc.UpdateStatus(context.Background(), payoutID, "refunded", "")
		assert.ErrorIs(t, err, payout.ErrInvalidStatus)
	})

	t.Run("InvalidTransitionPassedThrough", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := payout.NewMockRepository(ctrl)
		repo.EXPECT().
			UpdateStatus(gomock.Any(), payoutID, payout.StatusCompleted, "").
			Return(nil, payout.ErrInvalidTransition)

		svc := payout.NewService(repo)
		_, err := svc.UpdateStatus(context.Background(), payoutID, payout.StatusCompleted, "")
		assert.ErrorIs(t, err, payout.ErrInvalidTransition)
	})
}

package reward

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

type transactionResponse struct {
	ID           uuid.UUID     `json:"id"`
	Amount       int64         `json:"amount"`
	Type         reward.TxType `json:"type"`
	Description  string        `json:"description"`
	WasteEntryID *uuid.UUID    `json:"waste_entry_id,omitempty"`
	PayoutID     *uuid.UUID    `json:"payout_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

type payoutResponse struct {
	ID              uuid.UUID     `json:"id"`
	Coins           int64         `json:"coins"`
	CashAmountCents int64         `json:"cash_amount_cents"`
	PaymentMethod   string        `json:"payment_method"`
	Status          payout.Status `json:"status"`
	FailureReason   string        `json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time    `json:"processed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type summaryResponse struct {
	TotalCoins     int64                 `json:"total_coins"`
	LifetimeCoins  int64                 `json:"lifetime_coins"`
	CashValueCents int64                 `json:"cash_value_cents"`
	LastEarnedAt   *time.Time            `json:"last_earned_at,omitempty"`
	Transactions   []transactionResponse `json:"transactions"`
	Payouts        []payoutResponse      `json:"payouts"`
}

type balanceResponse struct {
	TotalCoins    int64 `json:"total_coins"`
	LifetimeCoins int64 `json:"lifetime_coins"`
}

func toBalanceResponse(b *reward.Balance) balanceResponse {
	return balanceResponse{
		TotalCoins:    b.TotalCoins,
		LifetimeCoins: b.LifetimeCoins,
	}
}

type leaderboardEntryResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Organization  string    `json:"organization"`
	LifetimeCoins int64     `json:"lifetime_coins"`
}

type reconciliationResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	WasteEntryID uuid.UUID `json:"waste_entry_id"`
	Coins        int64     `json:"coins"`
	Cause        string    `json:"cause"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTransactionResponses(txs []*reward.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = transactionResponse{
			ID:           tx.ID,
			Amount:       tx.Amount,
			Type:         tx.Type,
			Description:  tx.Description,
			WasteEntryID: tx.WasteEntryID,
			PayoutID:     tx.PayoutID,
			CreatedAt:    tx.CreatedAt,
		}
	}

	return resp
}

func toPayoutResponse(p *payout.Payout) payoutResponse {
	return payoutResponse{
		ID:              p.ID,
		Coins:           p.Coins,
		CashAmountCents: p.CashAmountCents,
		PaymentMethod:   p.PaymentMethod,
		Status:          p.Status,
		FailureReason:   p.FailureReason,
		ProcessedAt:     p.ProcessedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func toPayoutResponses(payouts []*payout.Payout) []payoutResponse {
	resp := make([]payoutResponse, len(payouts))
	for i, p := range payouts {
		resp[i] = toPayoutResponse(p)
	}

	return resp
}

func toSummaryResponse(summary *reward.Summary, payouts []*payout.Payout) summaryResponse {
	return summaryResponse{
		TotalCoins:     summary.Account.TotalCoins,
		LifetimeCoins:  summary.Account.LifetimeCoins,
		CashValueCents: summary.CashValueCents,
		LastEarnedAt:   summary.Account.LastEarnedAt,
		Transactions:   toTransactionResponses(summary.Transactions),
		Payouts:        toPayoutResponses(payouts),
	}
}

func toLeaderboardResponse(entries []reward.LeaderboardEntry) []leaderboardEntryResponse {
	resp := make([]leaderboardEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = leaderboardEntryResponse{
			UserID:        e.UserID,
			Name:          e.Name,
			Organization:  e.Organization,
			LifetimeCoins: e.LifetimeCoins,
		}
	}

	return resp
}

func toReconciliationResponses(recs []*reward.Reconciliation) []reconciliationResponse {
	resp := make([]reconciliationResponse, len(recs))
	for i, rec := range recs {
		resp[i] = reconciliationResponse{
			ID:           rec.ID,
			UserID:       rec.UserID,
			WasteEntryID: rec.WasteEntryID,
			Coins:        rec.Coins,
			Cause:        rec.Cause,
			CreatedAt:    rec.CreatedAt,
		}
	}

	return resp
}

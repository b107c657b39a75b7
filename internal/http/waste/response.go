package waste

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
	"github.com/ecofuelconnect/ecofuelconnect/internal/waste"
)

type entryResponse struct {
	ID                uuid.UUID    `json:"id"`
	SupplierID        uuid.UUID    `json:"supplier_id"`
	ProducerID        uuid.UUID    `json:"producer_id"`
	WasteType         waste.Type   `json:"waste_type"`
	Quantity          float64      `json:"quantity"`
	Unit              waste.Unit   `json:"unit"`
	EstimatedWeightKg float64      `json:"estimated_weight_kg"`
	QualityGrade      reward.Grade `json:"quality_grade,omitempty"`
	Status            waste.Status `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         *time.Time   `json:"updated_at,omitempty"`
}

type balanceResponse struct {
	TotalCoins    int64 `json:"total_coins"`
	LifetimeCoins int64 `json:"lifetime_coins"`
}

type logResponse struct {
	Entry         entryResponse    `json:"entry"`
	CoinsEarned   int64            `json:"coins_earned"`
	Balance       *balanceResponse `json:"balance,omitempty"`
	RewardPending bool             `json:"reward_pending,omitempty"`
}

func toEntryResponse(e *waste.Entry) entryResponse {
	return entryResponse{
		ID:                e.ID,
		SupplierID:        e.SupplierID,
		ProducerID:        e.ProducerID,
		WasteType:         e.WasteType,
		Quantity:          e.Quantity,
		Unit:              e.Unit,
		EstimatedWeightKg: e.EstimatedWeightKg,
		QualityGrade:      e.QualityGrade,
		Status:            e.Status,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toLogResponse(result *waste.LogResult) logResponse {
	resp := logResponse{
		Entry:         toEntryResponse(result.Entry),
		CoinsEarned:   result.CoinsEarned,
		RewardPending: result.RewardPending,
	}

	if result.Balance != nil {
		resp.Balance = &balanceResponse{
			TotalCoins:    result.Balance.TotalCoins,
			LifetimeCoins: result.Balance.LifetimeCoins,
		}
	}

	return resp
}

func toEntryResponseList(entries []*waste.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}

	return resp
}

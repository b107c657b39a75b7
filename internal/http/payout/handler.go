package payout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
)

// Handler serves the administrative payout surface. Users reach their own
// payouts through the rewards summary.
type Handler struct {
	svc *payout.Service
}

func NewHandler(svc *payout.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

type payoutResponse struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	Coins           int64         `json:"coins"`
	CashAmountCents int64         `json:"cash_amount_cents"`
	PaymentMethod   string        `json:"payment_method"`
	Status          payout.Status `json:"status"`
	FailureReason   string        `json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time    `json:"processed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       *time.Time    `json:"updated_at,omitempty"`
}

func toResponse(p *payout.Payout) payoutResponse {
	return payoutResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		Coins:           p.Coins,
		CashAmountCents: p.CashAmountCents,
		PaymentMethod:   p.PaymentMethod,
		Status:          p.Status,
		FailureReason:   p.FailureReason,
		ProcessedAt:     p.ProcessedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toResponseList(payouts []*payout.Payout) []payoutResponse {
	resp := make([]payoutResponse, len(payouts))
	for i, p := range payouts {
		resp[i] = toResponse(p)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := payout.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(payout.Status(s))
	}

	if s := r.URL.Query().Get("user_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid user_id", http.StatusBadRequest)
			return
		}

		filter.UserID = &id
	}

	payouts, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(payouts)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, payout.ErrNotFound) {
			http.Error(w, "payout not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status payout.Status `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.svc.UpdateStatus(r.Context(), id, req.Status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrNotFound):
			http.Error(w, "payout not found", http.StatusNotFound)
		case errors.Is(err, payout.ErrInvalidStatus):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, payout.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

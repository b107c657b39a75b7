package reward

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/http/middleware"
	"github.com/ecofuelconnect/ecofuelconnect/internal/payout"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
)

const defaultHistoryLimit = 50

type Handler struct {
	rewards *reward.Service
	payouts *payout.Service
}

func NewHandler(rewards *reward.Service, payouts *payout.Service) *Handler {
	return &Handler{rewards: rewards, payouts: payouts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
	r.Post("/convert", h.convert)
}

// AdminRoutes exposes the reward reconciliation queue.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.listReconciliation)
	r.Post("/{id}/retry", h.retryReconciliation)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultHistoryLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	summary, err := h.rewards.Summary(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payouts, err := h.payouts.ListByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSummaryResponse(summary, payouts)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type convertRequest struct {
	Coins         int64  `json:"coins"`
	PaymentMethod string `json:"payment_method"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.payouts.Request(r.Context(), payout.CreateParams{
		UserID:        userID,
		Coins:         req.Coins,
		PaymentMethod: req.PaymentMethod,
		RequestKey:    r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		switch {
		case errors.Is(err, payout.ErrBelowMinimum), errors.Is(err, payout.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, reward.ErrInsufficientBalance):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toPayoutResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Leaderboard is mounted outside the authenticated group: the supplier
// ranking is public.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.rewards.Leaderboard(r.Context(), limit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toLeaderboardResponse(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listReconciliation(w http.ResponseWriter, r *http.Request) {
	recs, err := h.rewards.ListReconciliation(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toReconciliationResponses(recs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) retryReconciliation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	balance, err := h.rewards.RetryReconciliation(r.Context(), id)
	if err != nil {
		if errors.Is(err, reward.ErrNotFound) {
			http.Error(w, "reconciliation not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toBalanceResponse(balance)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

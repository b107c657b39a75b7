package waste

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecofuelconnect/ecofuelconnect/internal/http/middleware"
	"github.com/ecofuelconnect/ecofuelconnect/internal/reward"
	"github.com/ecofuelconnect/ecofuelconnect/internal/waste"
)

type Handler struct {
	svc *waste.Service
}

func NewHandler(svc *waste.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

type createEntryRequest struct {
	ProducerID   uuid.UUID    `json:"producer_id"`
	WasteType    waste.Type   `json:"waste_type"`
	Quantity     float64      `json:"quantity"`
	Unit         waste.Unit   `json:"unit"`
	QualityGrade reward.Grade `json:"quality_grade"`
}

// actorFrom translates the authenticated caller into the domain's actor for
// ownership checks.
func actorFrom(r *http.Request) (waste.Actor, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		return waste.Actor{}, false
	}

	return waste.Actor{
		UserID: userID,
		Admin:  middleware.Role(r.Context()) == middleware.RoleAdmin,
	}, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Logging a delivery attributes the entry to the caller, so only
	// suppliers may do it.
	if middleware.Role(r.Context()) != middleware.RoleSupplier {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Log(r.Context(), waste.LogParams{
		SupplierID:   supplierID,
		ProducerID:   req.ProducerID,
		WasteType:    req.WasteType,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		QualityGrade: req.QualityGrade,
	})
	if err != nil {
		switch {
		case errors.Is(err, waste.ErrValidation), errors.Is(err, waste.ErrInvalidProducer):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toLogResponse(result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := waste.ListFilter{}

	// Suppliers see only their own entries; admins see everything.
	if middleware.Role(r.Context()) != middleware.RoleAdmin {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter.SupplierID = new(userID)
	}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(waste.Status(s))
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := h.svc.Get(r.Context(), id, actor)
	if err != nil {
		if errors.Is(err, waste.ErrNotFound) {
			http.Error(w, "waste entry not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponse(entry)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status waste.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, ok := actorFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.svc.UpdateStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, waste.ErrNotFound):
			http.Error(w, "waste entry not found", http.StatusNotFound)
		case errors.Is(err, waste.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, waste.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toEntryResponse(entry)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cajaflow/caja/internal/adapter/http/dto"
	"github.com/cajaflow/caja/internal/adapter/http/middleware"
	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	CreateMovement(ctx context.Context, input usecase.CreateMovementInput) (*domain.Movement, error)
	EditMovement(ctx context.Context, input usecase.EditMovementInput) (*domain.Movement, error)
	CheckEditability(ctx context.Context, id string) (domain.EditDecision, error)
	VerifyMovement(ctx context.Context, actor *domain.User, id string) (*domain.Movement, bool, error)
	GetMovement(ctx context.Context, actor *domain.User, id string) (*domain.Movement, error)
	ListMovements(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Create records a new movement.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.movementUC.CreateMovement(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, err := h.movementUC.GetMovement(r.Context(), actor, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// List lists movements, optionally filtered by kind and verification state.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.MovementFilter{
		Kind:    domain.Kind(r.URL.Query().Get("kind")),
		State:   domain.VerificationState(r.URL.Query().Get("state")),
		OwnerID: r.URL.Query().Get("owner_id"),
		Limit:   parseIntQuery(r, "limit", 0),
		Offset:  parseIntQuery(r, "offset", 0),
	}

	movements, err := h.movementUC.ListMovements(r.Context(), filter)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}

// Update amends a movement while the edit window allows it.
func (h *MovementHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	var req dto.UpdateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.movementUC.EditMovement(r.Context(), req.ToUseCaseInput(actor, id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to edit movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// CheckEditability reports whether a movement may still be edited.
func (h *MovementHandler) CheckEditability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	decision, err := h.movementUC.CheckEditability(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check editability", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EditabilityFromDecision(decision))
}

// Verify confirms a pending movement.
func (h *MovementHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, notified, err := h.movementUC.VerifyMovement(r.Context(), actor, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyMovementResponse{
		Movement: dto.MovementFromDomain(movement),
		Notified: notified,
	})
}

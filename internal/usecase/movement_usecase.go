package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/metrics"
)

// MovementUseCase handles the movement lifecycle: creation, the
// window-bounded edit flow and administrative verification.
type MovementUseCase struct {
	movementRepo MovementRepository
	notifier     Notifier
	cache        Cache
	idGen        IDGenerator
	logger       *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewMovementUseCase creates a new MovementUseCase. metrics may be nil;
// now may be nil, in which case the wall clock is used; tests inject a
// fixed clock.
func NewMovementUseCase(
	movementRepo MovementRepository,
	notifier Notifier,
	cache Cache,
	idGen IDGenerator,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	now func() time.Time,
) *MovementUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}

	return &MovementUseCase{
		movementRepo: movementRepo,
		notifier:     notifier,
		cache:        cache,
		idGen:        idGen,
		logger:       logger,
		metrics:      metrics,
		now:          now,
	}
}

// CreateMovementInput represents input for recording a movement.
type CreateMovementInput struct {
	Actor      *domain.User
	Kind       domain.Kind
	Amount     decimal.Decimal
	Reason     string
	ReceiptURL string
}

// CreateMovement records a new movement. Expenses require a privileged
// actor; the initial verification state follows the actor's role.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, input CreateMovementInput) (*domain.Movement, error) {
	if input.Actor == nil {
		return nil, domain.ErrUnauthorized
	}

	if input.Kind == domain.KindExpense && !input.Actor.Role.CanRecordExpense() {
		return nil, domain.ErrInsufficientRole
	}

	if err := domain.ValidateReceiptURL(input.ReceiptURL); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	movement := &domain.Movement{
		ID:                uc.idGen.Generate(),
		OwnerID:           input.Actor.ID,
		Kind:              input.Kind,
		Amount:            input.Amount,
		Reason:            strings.TrimSpace(input.Reason),
		ReceiptURL:        input.ReceiptURL,
		VerificationState: domain.InitialVerificationState(input.Actor.Role),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if err := uc.movementRepo.Insert(ctx, movement); err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	if uc.metrics != nil {
		uc.metrics.MovementsCreated.WithLabelValues(string(movement.Kind)).Inc()
		uc.metrics.MovementAmount.Observe(movement.Amount.InexactFloat64())
	}

	uc.invalidateStats(ctx)
	uc.announce(ctx, movement)

	return movement, nil
}

// EditMovementInput represents a partial edit of a movement's mutable fields.
type EditMovementInput struct {
	Actor      *domain.User
	MovementID string
	Amount     *decimal.Decimal
	Reason     *string
	ReceiptURL *string
}

// EditMovement amends a movement while the edit window allows it. Only the
// creator may edit, and only while the movement is the single latest entry
// and younger than the window.
//
// Ordering of side effects is deliberate: the retraction for the OLD
// announcement is attempted before the store is updated, so the downstream
// system is never left pointing at a revision the ledger has already
// replaced. A failed retraction is logged and the edit proceeds; this is a
// known eventual-consistency gap, not a transactional guarantee.
func (uc *MovementUseCase) EditMovement(ctx context.Context, input EditMovementInput) (*domain.Movement, error) {
	if input.Actor == nil {
		return nil, domain.ErrUnauthorized
	}

	movement, err := uc.getMovement(ctx, input.MovementID)
	if err != nil {
		return nil, err
	}

	if movement.OwnerID != input.Actor.ID {
		return nil, domain.ErrUnauthorized
	}

	peers, err := uc.movementRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	decision := domain.EvaluateEditability(movement, peers, uc.now())
	if !decision.Editable {
		if uc.metrics != nil {
			uc.metrics.EditRejections.WithLabelValues(rejectionCause(decision.Reason)).Inc()
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrNotEditable, decision.Reason)
	}

	previous := *movement

	if input.Amount != nil {
		movement.Amount = *input.Amount
	}
	if input.Reason != nil {
		movement.Reason = strings.TrimSpace(*input.Reason)
	}
	if input.ReceiptURL != nil {
		if err := domain.ValidateReceiptURL(*input.ReceiptURL); err != nil {
			return nil, err
		}
		movement.ReceiptURL = *input.ReceiptURL
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	if previous.ExternalMessageRef != "" {
		if err := uc.notifier.MovementRetracted(ctx, &previous); err != nil {
			uc.recordNotification("retracted", err)
			uc.logger.Warn("retraction notification failed, edit proceeds",
				slog.String("movement_id", movement.ID),
				slog.String("error", err.Error()))
		} else {
			uc.recordNotification("retracted", nil)
		}
	}

	movement.UpdatedAt = uc.now().UTC()

	if err := uc.movementRepo.Update(ctx, movement); err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	if uc.metrics != nil {
		uc.metrics.MovementsEdited.Inc()
	}

	uc.invalidateStats(ctx)
	uc.announce(ctx, movement)

	return movement, nil
}

// CheckEditability evaluates the edit policy for a movement without
// changing anything; the UI uses it to drive the edit affordance.
func (uc *MovementUseCase) CheckEditability(ctx context.Context, id string) (domain.EditDecision, error) {
	movement, err := uc.getMovement(ctx, id)
	if err != nil {
		return domain.EditDecision{}, err
	}

	peers, err := uc.movementRepo.ListAll(ctx)
	if err != nil {
		return domain.EditDecision{}, domain.NewCollaboratorError("persistence", err)
	}

	return domain.EvaluateEditability(movement, peers, uc.now()), nil
}

// VerifyMovement transitions a pending movement to verified. The operation
// is idempotent: verifying an already verified movement changes nothing and
// dispatches no notification. The returned bool reports whether a
// verification notification was dispatched; it is false when the movement
// lacked complete correlation refs and the notification was skipped.
func (uc *MovementUseCase) VerifyMovement(ctx context.Context, actor *domain.User, id string) (*domain.Movement, bool, error) {
	movement, err := uc.getMovement(ctx, id)
	if err != nil {
		return nil, false, err
	}

	changed, err := movement.Verify(actor, uc.now().UTC())
	if err != nil {
		return nil, false, err
	}

	if !changed {
		return movement, false, nil
	}

	if err := uc.movementRepo.UpdateVerificationState(ctx, movement.ID, movement.VerificationState, movement.UpdatedAt); err != nil {
		return nil, false, domain.NewCollaboratorError("persistence", err)
	}

	if uc.metrics != nil {
		uc.metrics.MovementsVerified.Inc()
	}

	uc.invalidateStats(ctx)

	refs := domain.NotificationRefs{
		MessageRef: movement.ExternalMessageRef,
		ThreadRef:  movement.ExternalThreadRef,
	}
	if !refs.Complete() {
		uc.logger.Info("verification notification skipped, incomplete correlation refs",
			slog.String("movement_id", movement.ID))
		return movement, false, nil
	}

	if err := uc.notifier.MovementVerified(ctx, movement); err != nil {
		uc.recordNotification("verified", err)
		uc.logger.Warn("verification notification failed",
			slog.String("movement_id", movement.ID),
			slog.String("error", err.Error()))
	} else {
		uc.recordNotification("verified", nil)
	}

	return movement, true, nil
}

// GetMovement retrieves a movement by ID. Members see only their own
// movements; admins see all of them.
func (uc *MovementUseCase) GetMovement(ctx context.Context, actor *domain.User, id string) (*domain.Movement, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	movement, err := uc.getMovement(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && movement.OwnerID != actor.ID {
		return nil, domain.ErrInsufficientRole
	}

	return movement, nil
}

// ListMovements lists movements matching the filter.
func (uc *MovementUseCase) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	movements, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	return movements, nil
}

func (uc *MovementUseCase) getMovement(ctx context.Context, id string) (*domain.Movement, error) {
	movement, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMovementNotFound) {
			return nil, err
		}
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	return movement, nil
}

// announce dispatches the created/updated notification for a movement and
// persists any correlation refs the downstream system returns. Best-effort
// all the way through.
func (uc *MovementUseCase) announce(ctx context.Context, movement *domain.Movement) {
	balance := decimal.Zero
	if stats, err := uc.movementRepo.AggregateStats(ctx); err == nil {
		balance = stats.Balance
	}

	refs, err := uc.notifier.MovementCreated(ctx, movement, balance)
	if err != nil {
		uc.recordNotification("created", err)
		uc.logger.Warn("movement notification failed",
			slog.String("movement_id", movement.ID),
			slog.String("error", err.Error()))
		return
	}
	uc.recordNotification("created", nil)

	if refs.MessageRef == "" && refs.ThreadRef == "" {
		return
	}

	movement.ExternalMessageRef = refs.MessageRef
	movement.ExternalThreadRef = refs.ThreadRef

	if err := uc.movementRepo.UpdateNotificationRefs(ctx, movement.ID, refs); err != nil {
		uc.logger.Warn("failed to persist notification refs",
			slog.String("movement_id", movement.ID),
			slog.String("error", err.Error()))
	}
}

func (uc *MovementUseCase) recordNotification(event string, err error) {
	if uc.metrics == nil {
		return
	}

	if err != nil {
		uc.metrics.NotificationsFailed.WithLabelValues(event).Inc()
		return
	}
	uc.metrics.NotificationsSent.WithLabelValues(event).Inc()
}

func rejectionCause(reason string) string {
	switch reason {
	case domain.ReasonNotLatest:
		return "not_latest"
	case domain.ReasonWindowExpired:
		return "window_expired"
	default:
		return "not_found"
	}
}

func (uc *MovementUseCase) invalidateStats(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.Delete(ctx, statsCacheKey); err != nil {
		uc.logger.Warn("failed to invalidate summary cache", slog.String("error", err.Error()))
	}
}

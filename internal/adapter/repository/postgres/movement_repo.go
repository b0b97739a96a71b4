package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// dbPool is the subset of pgxpool.Pool the repositories use. Tests
// substitute a pgxmock pool.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	pool    dbPool
	retrier *Retrier
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return newMovementRepositoryWithPool(pool)
}

func newMovementRepositoryWithPool(pool dbPool) *MovementRepository {
	return &MovementRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

const movementColumns = `id, owner_id, kind, amount, reason, receipt_url,
	verification_state, external_message_ref, external_thread_ref,
	seq, created_at, updated_at`

// Insert stores a new movement and fills in its insertion seq.
func (r *MovementRepository) Insert(ctx context.Context, movement *domain.Movement) error {
	query := `
		INSERT INTO movements (id, owner_id, kind, amount, reason, receipt_url,
			verification_state, external_message_ref, external_thread_ref,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq
	`

	amount, err := decimalToNumeric(movement.Amount)
	if err != nil {
		return err
	}

	return r.retrier.Retry(ctx, func() error {
		return r.pool.QueryRow(ctx, query,
			movement.ID,
			movement.OwnerID,
			movement.Kind,
			amount,
			movement.Reason,
			movement.ReceiptURL,
			movement.VerificationState,
			movement.ExternalMessageRef,
			movement.ExternalThreadRef,
			movement.CreatedAt,
			movement.UpdatedAt,
		).Scan(&movement.Seq)
	})
}

// Update rewrites the mutable fields of a movement.
func (r *MovementRepository) Update(ctx context.Context, movement *domain.Movement) error {
	query := `
		UPDATE movements
		SET amount = $2, reason = $3, receipt_url = $4, updated_at = $5
		WHERE id = $1
	`

	amount, err := decimalToNumeric(movement.Amount)
	if err != nil {
		return err
	}

	return r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query,
			movement.ID,
			amount,
			movement.Reason,
			movement.ReceiptURL,
			movement.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrMovementNotFound
		}
		return nil
	})
}

// UpdateVerificationState transitions a movement's verification state.
func (r *MovementRepository) UpdateVerificationState(ctx context.Context, id string, state domain.VerificationState, updatedAt time.Time) error {
	query := `
		UPDATE movements
		SET verification_state = $2, updated_at = $3
		WHERE id = $1
	`

	return r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, query, id, state, updatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrMovementNotFound
		}
		return nil
	})
}

// UpdateNotificationRefs stores the correlation refs returned by the
// downstream messaging system.
func (r *MovementRepository) UpdateNotificationRefs(ctx context.Context, id string, refs domain.NotificationRefs) error {
	query := `
		UPDATE movements
		SET external_message_ref = $2, external_thread_ref = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, refs.MessageRef, refs.ThreadRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`

	movement, err := scanMovement(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMovementNotFound
	}

	return movement, err
}

// List retrieves movements matching the filter, most recent first.
func (r *MovementRepository) List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		conditions = append(conditions, fmt.Sprintf("verification_state = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	query := `SELECT ` + movementColumns + ` FROM movements`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMovements(rows)
}

// ListAll returns the full ledger, the peer set for the editability check.
func (r *MovementRepository) ListAll(ctx context.Context) ([]*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements ORDER BY created_at, seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMovements(rows)
}

// AggregateStats computes ledger totals in a single pass.
func (r *MovementRepository) AggregateStats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0),
			COUNT(*) FILTER (WHERE kind = 'income'),
			COUNT(*) FILTER (WHERE kind = 'expense'),
			COUNT(*)
		FROM movements
	`

	var (
		incomeTotal  pgtype.Numeric
		expenseTotal pgtype.Numeric
		stats        domain.Stats
	)

	err := r.pool.QueryRow(ctx, query).Scan(
		&incomeTotal,
		&expenseTotal,
		&stats.IncomeCount,
		&stats.ExpenseCount,
		&stats.TotalCount,
	)
	if err != nil {
		return nil, err
	}

	stats.IncomeTotal = numericToDecimal(incomeTotal)
	stats.ExpenseTotal = numericToDecimal(expenseTotal)
	stats.Balance = stats.IncomeTotal.Sub(stats.ExpenseTotal)

	return &stats, nil
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var (
		movement domain.Movement
		amount   pgtype.Numeric
	)

	err := row.Scan(
		&movement.ID,
		&movement.OwnerID,
		&movement.Kind,
		&amount,
		&movement.Reason,
		&movement.ReceiptURL,
		&movement.VerificationState,
		&movement.ExternalMessageRef,
		&movement.ExternalThreadRef,
		&movement.Seq,
		&movement.CreatedAt,
		&movement.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	movement.Amount = numericToDecimal(amount)

	return &movement, nil
}

func scanMovements(rows pgx.Rows) ([]*domain.Movement, error) {
	var movements []*domain.Movement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric

	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("encode amount %s: %w", d, err)
	}

	return n, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

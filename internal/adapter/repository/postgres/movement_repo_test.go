package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

var repoNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func mustNumeric(t *testing.T, d decimal.Decimal) pgtype.Numeric {
	t.Helper()
	n, err := decimalToNumeric(d)
	if err != nil {
		t.Fatalf("encode %s: %v", d, err)
	}
	return n
}

func sampleMovement() *domain.Movement {
	return &domain.Movement{
		ID:                "01JMOVEMENT",
		OwnerID:           "01JUSER",
		Kind:              domain.KindIncome,
		Amount:            decimal.NewFromInt(150),
		Reason:            "client payment",
		VerificationState: domain.VerificationPending,
		CreatedAt:         repoNow,
		UpdatedAt:         repoNow,
	}
}

func movementRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "owner_id", "kind", "amount", "reason", "receipt_url",
		"verification_state", "external_message_ref", "external_thread_ref",
		"seq", "created_at", "updated_at",
	})
}

func TestMovementRepositoryInsertFillsSeq(t *testing.T) {
	pool := newMockPool(t)
	movement := sampleMovement()

	pool.ExpectQuery("INSERT INTO movements").
		WithArgs(
			movement.ID,
			movement.OwnerID,
			movement.Kind,
			mustNumeric(t, movement.Amount),
			movement.Reason,
			movement.ReceiptURL,
			movement.VerificationState,
			movement.ExternalMessageRef,
			movement.ExternalThreadRef,
			movement.CreatedAt,
			movement.UpdatedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"seq"}).AddRow(int64(7)))

	repo := newMovementRepositoryWithPool(pool)
	if err := repo.Insert(context.Background(), movement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if movement.Seq != 7 {
		t.Fatalf("expected seq 7 from insert, got %d", movement.Seq)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryUpdate(t *testing.T) {
	pool := newMockPool(t)
	movement := sampleMovement()

	pool.ExpectExec("UPDATE movements").
		WithArgs(
			movement.ID,
			mustNumeric(t, movement.Amount),
			movement.Reason,
			movement.ReceiptURL,
			movement.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := newMovementRepositoryWithPool(pool)
	if err := repo.Update(context.Background(), movement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryUpdateMissing(t *testing.T) {
	pool := newMockPool(t)
	movement := sampleMovement()

	pool.ExpectExec("UPDATE movements").
		WithArgs(
			movement.ID,
			mustNumeric(t, movement.Amount),
			movement.Reason,
			movement.ReceiptURL,
			movement.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := newMovementRepositoryWithPool(pool)
	if err := repo.Update(context.Background(), movement); err != domain.ErrMovementNotFound {
		t.Fatalf("expected ErrMovementNotFound, got %v", err)
	}
}

func TestMovementRepositoryUpdateVerificationState(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectExec("UPDATE movements").
		WithArgs("01JMOVEMENT", domain.VerificationVerified, repoNow).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := newMovementRepositoryWithPool(pool)
	if err := repo.UpdateVerificationState(context.Background(), "01JMOVEMENT", domain.VerificationVerified, repoNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryUpdateNotificationRefs(t *testing.T) {
	pool := newMockPool(t)
	refs := domain.NotificationRefs{MessageRef: "msg-1", ThreadRef: "thread-1"}

	pool.ExpectExec("UPDATE movements").
		WithArgs("01JMOVEMENT", refs.MessageRef, refs.ThreadRef).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := newMovementRepositoryWithPool(pool)
	if err := repo.UpdateNotificationRefs(context.Background(), "01JMOVEMENT", refs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	movement := sampleMovement()

	pool.ExpectQuery("SELECT (.+) FROM movements WHERE id").
		WithArgs(movement.ID).
		WillReturnRows(movementRows().AddRow(
			movement.ID, movement.OwnerID, movement.Kind,
			mustNumeric(t, movement.Amount), movement.Reason, movement.ReceiptURL,
			movement.VerificationState, "", "",
			int64(3), movement.CreatedAt, movement.UpdatedAt,
		))

	repo := newMovementRepositoryWithPool(pool)
	got, err := repo.GetByID(context.Background(), movement.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != movement.ID || got.Seq != 3 {
		t.Fatalf("unexpected movement: %+v", got)
	}
	if !got.Amount.Equal(movement.Amount) {
		t.Fatalf("expected amount %s, got %s", movement.Amount, got.Amount)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("SELECT (.+) FROM movements WHERE id").
		WithArgs("missing").
		WillReturnRows(movementRows())

	repo := newMovementRepositoryWithPool(pool)
	if _, err := repo.GetByID(context.Background(), "missing"); err != domain.ErrMovementNotFound {
		t.Fatalf("expected ErrMovementNotFound, got %v", err)
	}
}

func TestMovementRepositoryListWithFilter(t *testing.T) {
	pool := newMockPool(t)
	movement := sampleMovement()

	pool.ExpectQuery("SELECT (.+) FROM movements WHERE kind = \\$1 AND verification_state = \\$2").
		WithArgs(domain.KindIncome, domain.VerificationPending, 50, 0).
		WillReturnRows(movementRows().AddRow(
			movement.ID, movement.OwnerID, movement.Kind,
			mustNumeric(t, movement.Amount), movement.Reason, movement.ReceiptURL,
			movement.VerificationState, "", "",
			int64(1), movement.CreatedAt, movement.UpdatedAt,
		))

	repo := newMovementRepositoryWithPool(pool)
	movements, err := repo.List(context.Background(), domain.MovementFilter{
		Kind:   domain.KindIncome,
		State:  domain.VerificationPending,
		Limit:  50,
		Offset: 0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(movements) != 1 || movements[0].ID != movement.ID {
		t.Fatalf("unexpected movements: %+v", movements)
	}

	assertExpectations(t, pool)
}

func TestMovementRepositoryAggregateStats(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{
			"income_total", "expense_total", "income_count", "expense_count", "total_count",
		}).AddRow(
			mustNumeric(t, decimal.NewFromInt(500)),
			mustNumeric(t, decimal.NewFromInt(120)),
			int64(4), int64(2), int64(6),
		))

	repo := newMovementRepositoryWithPool(pool)
	stats, err := repo.AggregateStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !stats.Balance.Equal(decimal.NewFromInt(380)) {
		t.Fatalf("expected balance 380, got %s", stats.Balance)
	}
	if stats.IncomeCount != 4 || stats.ExpenseCount != 2 || stats.TotalCount != 6 {
		t.Fatalf("unexpected counts: %+v", stats)
	}

	assertExpectations(t, pool)
}

func TestDecimalNumericConversion(t *testing.T) {
	tests := []string{"150", "0.01", "1234.56", "99999999999999.99"}

	for _, input := range tests {
		d, err := decimal.NewFromString(input)
		if err != nil {
			t.Fatalf("parse %s: %v", input, err)
		}

		n, err := decimalToNumeric(d)
		if err != nil {
			t.Fatalf("encode %s: %v", input, err)
		}
		if !n.Valid {
			t.Fatalf("expected valid numeric for %s", input)
		}

		if got := numericToDecimal(n); !got.Equal(d) {
			t.Fatalf("round trip of %s produced %s", input, got)
		}
	}
}

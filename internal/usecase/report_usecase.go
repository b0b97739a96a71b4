package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// ReportUseCase serves aggregate ledger statistics, with a short-lived
// cache in front of the store.
type ReportUseCase struct {
	movementRepo MovementRepository
	cache        Cache
	logger       *slog.Logger
}

// NewReportUseCase creates a new ReportUseCase. cache may be nil.
func NewReportUseCase(movementRepo MovementRepository, cache Cache, logger *slog.Logger) *ReportUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportUseCase{
		movementRepo: movementRepo,
		cache:        cache,
		logger:       logger,
	}
}

// statsPayload is the cache serialization of domain.Stats.
type statsPayload struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Balance      decimal.Decimal `json:"balance"`
	IncomeCount  int64           `json:"income_count"`
	ExpenseCount int64           `json:"expense_count"`
	TotalCount   int64           `json:"total_count"`
}

// Summary returns the aggregate statistics for the whole ledger.
func (uc *ReportUseCase) Summary(ctx context.Context) (*domain.Stats, error) {
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, statsCacheKey); err == nil && len(raw) > 0 {
			var payload statsPayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				return &domain.Stats{
					IncomeTotal:  payload.IncomeTotal,
					ExpenseTotal: payload.ExpenseTotal,
					Balance:      payload.Balance,
					IncomeCount:  payload.IncomeCount,
					ExpenseCount: payload.ExpenseCount,
					TotalCount:   payload.TotalCount,
				}, nil
			}
		}
	}

	stats, err := uc.movementRepo.AggregateStats(ctx)
	if err != nil {
		return nil, domain.NewCollaboratorError("persistence", err)
	}

	if uc.cache != nil {
		raw, err := json.Marshal(statsPayload{
			IncomeTotal:  stats.IncomeTotal,
			ExpenseTotal: stats.ExpenseTotal,
			Balance:      stats.Balance,
			IncomeCount:  stats.IncomeCount,
			ExpenseCount: stats.ExpenseCount,
			TotalCount:   stats.TotalCount,
		})
		if err == nil {
			if err := uc.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL); err != nil {
				uc.logger.Warn("failed to cache summary", slog.String("error", err.Error()))
			}
		}
	}

	return stats, nil
}

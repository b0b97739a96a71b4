package usecase

import (
	"context"
	"fmt"

	"github.com/cajaflow/caja/internal/domain"
	"github.com/cajaflow/caja/internal/infrastructure/metrics"
)

// ReceiptUseCase normalizes and stores receipt photos, returning a public
// URL the movement can reference.
type ReceiptUseCase struct {
	storage   ReceiptStorage
	processor ReceiptProcessor
	idGen     IDGenerator
	metrics   *metrics.Metrics
}

// NewReceiptUseCase creates a new ReceiptUseCase. metrics may be nil.
func NewReceiptUseCase(storage ReceiptStorage, processor ReceiptProcessor, idGen IDGenerator, metrics *metrics.Metrics) *ReceiptUseCase {
	return &ReceiptUseCase{
		storage:   storage,
		processor: processor,
		idGen:     idGen,
		metrics:   metrics,
	}
}

// Upload processes a receipt image and stores it under a generated key.
func (uc *ReceiptUseCase) Upload(ctx context.Context, actor *domain.User, data []byte) (string, error) {
	if actor == nil {
		return "", domain.ErrUnauthorized
	}

	if len(data) == 0 {
		return "", domain.ErrInvalidReceipt
	}

	normalized, contentType, err := uc.processor.Normalize(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidReceipt, err)
	}

	key := "receipts/" + uc.idGen.Generate() + ".jpg"

	url, err := uc.storage.Store(ctx, key, normalized, contentType)
	if err != nil {
		return "", domain.NewCollaboratorError("storage", err)
	}

	if uc.metrics != nil {
		uc.metrics.ReceiptsUploaded.Inc()
		uc.metrics.ReceiptBytes.Observe(float64(len(normalized)))
	}

	return url, nil
}

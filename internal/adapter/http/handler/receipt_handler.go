package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/cajaflow/caja/internal/adapter/http/dto"
	"github.com/cajaflow/caja/internal/adapter/http/middleware"
	"github.com/cajaflow/caja/internal/domain"
)

// maxReceiptSize caps uploaded receipt photos at 10 MiB.
const maxReceiptSize = 10 << 20

// ReceiptService defines the behavior needed by ReceiptHandler.
type ReceiptService interface {
	Upload(ctx context.Context, actor *domain.User, data []byte) (string, error)
}

// ReceiptHandler handles receipt photo uploads.
type ReceiptHandler struct {
	receiptUC ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptUC ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptUC: receiptUC}
}

// Upload accepts a multipart receipt photo, normalizes it and returns the
// URL the stored copy is reachable at.
func (h *ReceiptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body", err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload", err.Error())
		return
	}

	url, err := h.receiptUC.Upload(r.Context(), actor, data)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to store receipt", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptResponse{URL: url})
}

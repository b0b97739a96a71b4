package handler

import (
	"context"
	"net/http"

	"github.com/cajaflow/caja/internal/adapter/http/dto"
	"github.com/cajaflow/caja/internal/domain"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Summary(ctx context.Context) (*domain.Stats, error)
}

// ReportHandler handles reporting HTTP requests.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Summary returns aggregate statistics for the whole ledger.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportUC.Summary(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute summary", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(stats))
}

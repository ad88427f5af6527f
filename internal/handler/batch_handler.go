// internal/handler/batch_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-admin/internal/errors"
	"github.com/unclebandit/campaign-admin/internal/service"
)

// BatchHandler serves the batch run ledger.
type BatchHandler struct {
	Service *service.LedgerService
	Logger  *zap.Logger
}

func NewBatchHandler(svc *service.LedgerService, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{Service: svc, Logger: logger.Named("batches")}
}

// ListBatches returns a paginated list of batch runs
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	runs, pagination, err := h.Service.ListRuns(r.Context(), page, pageSize)
	if err != nil {
		h.Logger.Error("failed to list batch runs", zap.Error(err))
		http.Error(w, "failed to fetch batch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       runs,
		"pagination": pagination,
	})
}

// GetBatchWithStats returns one run with its item counts by status.
func (h *BatchHandler) GetBatchWithStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validRunID(id) {
		h.writeErr(w, id, appErrors.NewBatchRunNotFound(id))
		return
	}

	details, err := h.Service.GetRunWithStats(r.Context(), id)
	if err != nil {
		h.writeErr(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

// DeleteBatch removes a run from the ledger. Only the ledger copy goes;
// campaigns created upstream are untouched.
func (h *BatchHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validRunID(id) {
		h.writeErr(w, id, appErrors.NewBatchRunNotFound(id))
		return
	}
	if err := h.Service.DeleteRun(r.Context(), id); err != nil {
		h.writeErr(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validRunID keeps ids the uuid column would reject away from the database.
func validRunID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (h *BatchHandler) writeErr(w http.ResponseWriter, id string, err error) {
	var nf *appErrors.ErrBatchRunNotFound
	if errors.As(err, &nf) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.Logger.Error("batch run request failed", zap.String("run_id", id), zap.Error(err))
	http.Error(w, "failed to fetch batch run", http.StatusInternalServerError)
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"scraper/internal/domain"
	"scraper/internal/storage"
)

func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.BatchID == "" {
		s.respondWithError(w, http.StatusBadRequest, "batch_id is required")
		return
	}
	if req.OwnerID == "" {
		s.respondWithError(w, http.StatusBadRequest, "owner_id is required")
		return
	}
	if len(req.URLs) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "URLs list cannot be empty")
		return
	}
	for _, u := range req.URLs {
		parsed, err := url.ParseRequestURI(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			s.respondWithError(w, http.StatusBadRequest, "Invalid URL in list: "+u)
			return
		}
	}

	if err := s.store.CreateBatch(r.Context(), req); err != nil {
		if errors.Is(err, storage.ErrDuplicateBatch) {
			s.respondWithError(w, http.StatusConflict, "Batch already submitted")
			return
		}
		s.logger.Error("failed to create batch", zap.Error(err))
		s.metrics.IncErrorsTotal("db_create_failed")
		s.respondWithError(w, http.StatusInternalServerError, "Could not create batch")
		return
	}

	if !s.queue.Submit(req) {
		// Release the pending row so the job host's retry is not
		// rejected as a duplicate.
		if err := s.store.DeleteBatch(r.Context(), req.BatchID); err != nil {
			s.logger.Error("failed to release unqueued batch",
				zap.String("batch_id", req.BatchID), zap.Error(err))
			s.metrics.IncErrorsTotal("db_delete_failed")
		}
		s.respondWithError(w, http.StatusServiceUnavailable, "Batch queue is full, try again later")
		return
	}
	if err := s.cache.SetBatchStatus(r.Context(), req.BatchID, domain.StatusPending); err != nil {
		s.logger.Warn("failed to cache batch status", zap.Error(err))
	}

	s.respondWithJSON(w, http.StatusAccepted, map[string]string{
		"message":  "Batch accepted for scraping",
		"batch_id": req.BatchID,
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	// Cheap path for in-flight batches; completed ones fall through to
	// the full report.
	if status, err := s.cache.BatchStatus(r.Context(), batchID); err == nil &&
		status != "" && status != domain.StatusCompleted {
		s.respondWithJSON(w, http.StatusOK, domain.BatchReport{
			BatchID: batchID,
			Status:  status,
		})
		return
	}

	report, err := s.store.GetBatch(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, storage.ErrBatchNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Batch not found")
			return
		}
		s.logger.Error("failed to get batch", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve batch")
		return
	}

	s.respondWithJSON(w, http.StatusOK, report)
}

func (s *Server) handleBatchExport(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	report, err := s.store.GetBatch(r.Context(), batchID)
	if err != nil {
		if errors.Is(err, storage.ErrBatchNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Batch not found")
			return
		}
		s.logger.Error("failed to get batch for export", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve batch")
		return
	}
	if report.Status != domain.StatusCompleted {
		s.respondWithError(w, http.StatusConflict, "Batch is not completed yet")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Emails"
	f.SetSheetName("Sheet1", sheet)
	_ = f.SetSheetRow(sheet, "A1", &[]interface{}{"Seed URL", "Email"})
	row := 2
	for _, res := range report.Results {
		for _, email := range res.Emails {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetSheetRow(sheet, cell, &[]interface{}{res.LinkScraped, email})
			row++
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="batch-%s.xlsx"`, batchID))
	if err := f.Write(w); err != nil {
		s.logger.Error("failed to write export", zap.String("batch_id", batchID), zap.Error(err))
		s.metrics.IncErrorsTotal("export_failed")
	}
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.store.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.cache.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

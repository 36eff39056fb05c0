// internal/handlers/import.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/ports"
	"github.com/bengkelpos/pos-be/internal/workers"
)

// ImportHandler handles bulk catalog imports
type ImportHandler struct {
	asynqClient *asynq.Client
	cache       ports.CacheRepository
	logger      *slog.Logger
	maxFileSize int64
	uploadDir   string
}

// NewImportHandler creates a new import handler
func NewImportHandler(asynqClient *asynq.Client, cache ports.CacheRepository, logger *slog.Logger, maxFileSize int64, uploadDir string) *ImportHandler {
	return &ImportHandler{
		asynqClient: asynqClient,
		cache:       cache,
		logger:      logger.With(slog.String("handler", "import")),
		maxFileSize: maxFileSize,
		uploadDir:   uploadDir,
	}
}

// ImportExcel handles POST /api/v1/import/excel. The spreadsheet is saved to
// the upload directory and processed by a background worker; the response
// carries a job id for polling.
func (h *ImportHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" &&
		contentType != "application/vnd.ms-excel" {
		respondError(h.logger, w, http.StatusBadRequest, "Only Excel files are allowed")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		h.logger.ErrorContext(ctx, "failed to create upload directory", "err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to prepare upload")
		return
	}

	tempFile := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename))
	dst, err := os.Create(tempFile)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create temp file", "err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to save upload")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to save file", "err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	jobID := uuid.New().String()
	payload := workers.ExcelJobPayload{
		JobID:    jobID,
		FilePath: tempFile,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to marshal import payload", "err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	task := asynq.NewTask(workers.TypeExcelImport, b)
	info, err := h.asynqClient.Enqueue(task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		os.Remove(tempFile)
		h.logger.ErrorContext(ctx, "failed to enqueue task", "err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	// Seed the status entry so polling works before the worker picks it up
	statusKey := redis_a.BuildKey(redis_a.PrefixImport, jobID)
	if err := h.cache.SetWithTTL(ctx, statusKey, workers.ImportStatus{
		JobID:    jobID,
		Status:   "queued",
		Filename: header.Filename,
		QueuedAt: time.Now().UTC(),
	}, 24*time.Hour); err != nil {
		h.logger.WarnContext(ctx, "failed to record import status", "err", err)
	}

	h.logger.InfoContext(ctx, "Excel import queued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("filename", header.Filename))

	respondJSON(h.logger, w, http.StatusAccepted, map[string]interface{}{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Excel import has been queued for processing",
	})
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := r.PathValue("jobId")

	var status workers.ImportStatus
	err := h.cache.Get(ctx, redis_a.BuildKey(redis_a.PrefixImport, jobID), &status)
	if err != nil {
		if errors.Is(err, redis_a.ErrCacheMiss) {
			respondError(h.logger, w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get job status",
			slog.String("job_id", jobID),
			"err", err)
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, status)
}

// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bengkelpos/pos-be/internal/core/ports"
	"github.com/bengkelpos/pos-be/internal/pkg/config"
)

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	store  ports.RecordStore
	config *config.Config
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(store ports.RecordStore, config *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		store:  store,
		config: config,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldLogs prunes activity log records past their retention window.
func (p *CleanupProcessor) CleanupOldLogs(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().UTC().Add(-p.config.FileProcessing.LogRetention)

	p.logger.InfoContext(ctx, "cleaning up old activity logs",
		slog.Time("cutoff", cutoff))

	deleted, err := p.store.DeleteOlderThan(ctx, ports.CollectionLogs, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup activity logs: %w", err)
	}

	p.logger.InfoContext(ctx, "old activity logs cleaned up",
		slog.Int64("rows_deleted", deleted))

	return nil
}

// CleanupTempFiles removes old temporary upload files
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}

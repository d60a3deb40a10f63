package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"intervai/server/internal/models"
)

// RecordSource is the part of the record repository the exporter needs.
type RecordSource interface {
	Unexported(ctx context.Context, limit int) ([]models.InterviewRecord, error)
	MarkExported(ctx context.Context, ids []uint) error
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // cron schedule, e.g. "0 2 * * *" for 2 AM daily
	ExportDir     string
	ExportEnabled bool
	BatchSize     int // 0 exports everything pending
}

// RecordExporterJob writes completed interviews to JSONL files on a schedule.
type RecordExporterJob struct {
	source RecordSource
	config *ExporterConfig
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

type exportLine struct {
	ID          uint      `json:"id"`
	UserID      string    `json:"userId"`
	UserEmail   string    `json:"userEmail,omitempty"`
	Mode        string    `json:"mode"`
	Level       string    `json:"level"`
	Score       *int      `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

func NewRecordExporterJob(source RecordSource, config *ExporterConfig, logger *zap.Logger) *RecordExporterJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordExporterJob{
		source: source,
		config: config,
		cron:   cron.New(),
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the scheduled export job
func (j *RecordExporterJob) Start() error {
	if !j.config.ExportEnabled {
		j.logger.Info("Record export is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunExport(context.Background()); err != nil {
			j.logger.Error("Export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Record exporter started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop waits for a running export to finish.
func (j *RecordExporterJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("Record exporter stopped")
	}
}

// RunExport performs a single export run and returns the written file path,
// or "" when nothing was pending.
func (j *RecordExporterJob) RunExport(ctx context.Context) (string, error) {
	records, err := j.source.Unexported(ctx, j.config.BatchSize)
	if err != nil {
		return "", fmt.Errorf("failed to get unexported records: %w", err)
	}
	if len(records) == 0 {
		j.logger.Info("No unexported records found")
		return "", nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	ids := make([]uint, len(records))
	for i, record := range records {
		ids[i] = record.ID
		if err := encoder.Encode(exportLine{
			ID:          record.ID,
			UserID:      record.UserID,
			UserEmail:   record.UserEmail,
			Mode:        record.Mode,
			Level:       record.Level,
			Score:       record.Score,
			CompletedAt: record.CompletedAt,
		}); err != nil {
			return "", fmt.Errorf("failed to encode record %d: %w", record.ID, err)
		}
	}

	if err := os.MkdirAll(j.config.ExportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("interviews_%s.jsonl", j.now().Format("20060102_150405"))
	path := filepath.Join(j.config.ExportDir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	if err := j.source.MarkExported(ctx, ids); err != nil {
		return "", fmt.Errorf("failed to mark as exported: %w", err)
	}

	j.logger.Info("Exported interview records", zap.Int("count", len(records)), zap.String("path", path))
	return path, nil
}

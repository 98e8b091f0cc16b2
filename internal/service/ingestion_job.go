package service

import (
	"context"
	"fmt"
	"time"
)

// IngestionJob runs one labelled ingestion on a schedule
type IngestionJob struct {
	service *IngestionService
	label   string
	timeout time.Duration
}

// NewIngestionJob creates a job for label. Each run is bounded by timeout.
func NewIngestionJob(service *IngestionService, label string, timeout time.Duration) *IngestionJob {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &IngestionJob{service: service, label: label, timeout: timeout}
}

// Name identifies the job in scheduler logs
func (j *IngestionJob) Name() string {
	return "snapshot_" + j.label
}

// Run performs the ingestion. It fails only when no category could be written.
func (j *IngestionJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	report, err := j.service.Run(ctx, j.label)
	if err != nil {
		return err
	}
	if report.Result() == "failed" {
		return fmt.Errorf("snapshot %s failed for all %d categories", j.label, len(report.Categories))
	}
	return nil
}

package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/aricept094/casiapipe/internal/batch"
)

// RecordStage is the one-shot helper the stage binaries use: open the
// ledger at path, record the pool summary under stage, close. An empty path
// disables the ledger and returns the zero run ID.
func RecordStage(path, stage string, started time.Time, sum batch.Summary) (string, error) {
	if path == "" {
		return "", nil
	}

	ledger, err := Open(path)
	if err != nil {
		return "", err
	}
	defer ledger.Close()

	run := Run{
		ID:         uuid.NewString(),
		Stage:      stage,
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Processed:  sum.Processed,
		Failed:     sum.Failed,
	}
	if err := ledger.RecordRun(run, sum.Rejections); err != nil {
		return "", err
	}
	return run.ID, nil
}

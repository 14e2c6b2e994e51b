package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/repository"
)

// PruneHistoryJob removes review log entries older than Cutoff.
type PruneHistoryJob struct {
	History repository.HistoryRepository
	Cutoff  time.Time
}

func (j *PruneHistoryJob) Name() string { return "prune_history" }

func (j *PruneHistoryJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("cutoff", j.Cutoff.Format(time.RFC3339))
	n, err := j.History.DeleteBefore(ctx, j.Cutoff)
	if err != nil {
		return fmt.Errorf("prune history before %s: %w", j.Cutoff.Format(time.DateOnly), err)
	}
	log.Info("pruned %d review history entries", n)
	return nil
}

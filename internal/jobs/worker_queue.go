package jobs

import (
	"context"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	historyPool *worker.Pool
	historyRepo repository.HistoryRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(historyPool *worker.Pool, historyRepo repository.HistoryRepository) JobQueue {
	return &WorkerQueue{
		historyPool: historyPool,
		historyRepo: historyRepo,
	}
}

func (q *WorkerQueue) EnqueueHistoryPrune(cutoff time.Time) error {
	return q.historyPool.Submit(&worker.PruneHistoryJob{
		History: q.historyRepo,
		Cutoff:  cutoff,
	})
}

// SchedulePrune enqueues a history prune immediately and then once per
// interval until ctx is cancelled. Entries older than retention are removed.
func SchedulePrune(ctx context.Context, q JobQueue, interval, retention time.Duration, now func() time.Time) {
	log := logger.FromContext(ctx).WithPrefix("prune")
	enqueue := func() {
		cutoff := now().Add(-retention)
		if err := q.EnqueueHistoryPrune(cutoff); err != nil {
			log.Warn("failed to enqueue history prune: %v", err)
		}
	}

	enqueue()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

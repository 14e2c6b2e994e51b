package jobs

import "time"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueHistoryPrune(cutoff time.Time) error
}

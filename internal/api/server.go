package api

import (
	"context"

	"github.com/vytor/lingoflash/internal/services"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	ReviewService services.ReviewService
	QueueService  services.QueueService
	StatsService  services.StatsService
	// DB is checked by the readiness probe. Nil means always ready.
	DB Pinger
}

package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically evicts idle sessions from memory.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(manager *Manager, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   logger.With().Str("component", "session_sweeper").Logger(),
	}
}

// Run blocks until context cancellation.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.manager == nil {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.manager.Sweep(); n > 0 {
				s.logger.Debug().Int("evicted", n).Int("remaining", s.manager.Count()).Msg("sweep finished")
			}
		}
	}
}

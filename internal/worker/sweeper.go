package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Expirer cancels pending appointments whose payment window has passed.
type Expirer interface {
	Execute(ctx context.Context) (int, error)
}

type Sweeper struct {
	job      Expirer
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(job Expirer, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{job: job, interval: interval, log: log}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.job.Execute(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("expiry sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.log.Info("expired unpaid appointments", zap.Int("count", n))
	}
}

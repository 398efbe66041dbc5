// Package scheduler runs background maintenance of the gateway
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiredPurger is the interface that wraps the cache eviction of stale rows
type ExpiredPurger interface {
	// Method PurgeExpired removes every cache entry older than the TTL.
	//
	// Returns the number of removed entries.
	//
	// If some error occurs, the error will be returned together with "0" value.
	PurgeExpired(ctx context.Context) (int64, error)
}

// CacheJanitor purges expired asset cache entries on a cron schedule
type CacheJanitor struct {
	purger   ExpiredPurger
	schedule cron.Schedule
	logger   *zap.Logger
	now      func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewCacheJanitor creates a janitor for the given cron expression
func NewCacheJanitor(purger ExpiredPurger, spec string, logger *zap.Logger) (*CacheJanitor, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &CacheJanitor{
		purger:   purger,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start starts the janitor loop. It is a no-op once started or stopped.
func (j *CacheJanitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.started || j.stopped {
		return
	}
	j.started = true

	j.logger.Info("Cache janitor started")
	go j.run()
}

// Stop cancels a running purge and waits for the loop to exit.
// It returns immediately when the janitor was never started.
func (j *CacheJanitor) Stop() {
	j.mu.Lock()
	if j.stopped {
		j.mu.Unlock()
		return
	}
	j.stopped = true
	started := j.started
	j.mu.Unlock()

	j.cancel()
	if started {
		<-j.done
	}
	j.logger.Info("Cache janitor stopped")
}

func (j *CacheJanitor) run() {
	defer close(j.done)

	for {
		now := j.now()
		timer := time.NewTimer(j.schedule.Next(now).Sub(now))

		select {
		case <-timer.C:
			j.PurgeOnce(j.ctx)
		case <-j.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// PurgeOnce runs a single purge and returns the number of removed entries.
// Failures are logged; the next tick retries.
func (j *CacheJanitor) PurgeOnce(ctx context.Context) int64 {
	removed, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn("Failed to purge expired cache entries", zap.Error(err))
		return 0
	}
	if removed > 0 {
		j.logger.Debug("Purged expired cache entries", zap.Int64("removed", removed))
	}
	return removed
}

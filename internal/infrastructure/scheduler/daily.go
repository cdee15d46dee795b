// Package scheduler runs background jobs at a fixed time of day.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is work run once a day
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// DailyConfig holds configuration for a daily trigger
type DailyConfig struct {
	// Hour and Minute are the local time of day to run (24h clock)
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultDailyConfig runs at 08:00 and checks every minute
func DefaultDailyConfig() DailyConfig {
	return DailyConfig{
		Hour:          8,
		Minute:        0,
		CheckInterval: time.Minute,
	}
}

// ParseClock reads "HH:MM" into the config
func (c *DailyConfig) ParseClock(clock string) error {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return fmt.Errorf("invalid time of day %q, expected HH:MM", clock)
	}
	c.Hour, c.Minute = t.Hour(), t.Minute()
	return nil
}

// DailyTrigger runs a job once per day at the configured time
type DailyTrigger struct {
	config DailyConfig
	job    Job
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailyTrigger creates a new daily trigger
func NewDailyTrigger(config DailyConfig, job Job, logger *zap.Logger) *DailyTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyTrigger{config: config, job: job, logger: logger, now: time.Now}
}

// Start starts the trigger loop
func (d *DailyTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily trigger started",
		zap.String("job", d.job.Name()),
		zap.Int("hour", d.config.Hour),
		zap.Int("minute", d.config.Minute),
		zap.Duration("check_interval", d.config.CheckInterval),
	)
	return nil
}

// Stop stops the loop and waits for a running job to return
func (d *DailyTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Daily trigger stopped", zap.String("job", d.job.Name()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.checkAndRun(ctx)
		}
	}
}

// checkAndRun runs the job when the clock has reached the configured time
// and it has not run yet today. A server started after the time still runs
// the job that day.
func (d *DailyTrigger) checkAndRun(ctx context.Context) bool {
	now := d.now()
	today := now.Format("2006-01-02")

	d.mu.Lock()
	if d.lastRunDate == today {
		d.mu.Unlock()
		return false
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), d.config.Hour, d.config.Minute, 0, 0, now.Location())
	if now.Before(due) {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = today
	d.mu.Unlock()

	start := time.Now()
	if err := d.job.Run(ctx); err != nil {
		d.logger.Error("Scheduled job failed", zap.String("job", d.job.Name()), zap.Error(err))
		return true
	}
	d.logger.Info("Scheduled job finished",
		zap.String("job", d.job.Name()),
		zap.Duration("duration", time.Since(start)),
	)
	return true
}

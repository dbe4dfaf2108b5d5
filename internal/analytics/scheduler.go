package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Flusher runs Tracker.Flush on a cron schedule.
type Flusher struct {
	tracker *Tracker
	logger  *zap.Logger
	sched   *cron.Cron
	timeout time.Duration
}

// NewFlusher schedules periodic flushes, e.g. "@every 30s".
func NewFlusher(tracker *Tracker, schedule string, logger *zap.Logger) (*Flusher, error) {
	f := &Flusher{
		tracker: tracker,
		logger:  logger,
		sched:   cron.New(cron.WithParser(cronParser)),
		timeout: 10 * time.Second,
	}

	if _, err := f.sched.AddFunc(schedule, f.run); err != nil {
		return nil, fmt.Errorf("invalid analytics flush schedule %q: %w", schedule, err)
	}
	return f, nil
}

func (f *Flusher) run() {
	defer func() {
		if err := recover(); err != nil {
			f.logger.Error("Analytics flush panicked", zap.Any("panic", err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.tracker.Flush(ctx); err != nil {
		f.logger.Warn("Scheduled analytics flush failed", zap.Error(err))
	}
}

func (f *Flusher) Start() {
	f.sched.Start()
}

// Stop waits for a running flush, then flushes whatever is still pending.
func (f *Flusher) Stop(ctx context.Context) error {
	select {
	case <-f.sched.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return f.tracker.Flush(ctx)
}

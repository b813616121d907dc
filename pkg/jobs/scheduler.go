package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one run of a scheduled job.
type Task func(ctx context.Context) error

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	// Timeout bounds each run. Defaults to one minute.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Scheduler runs named tasks on cron specs. Panics are recovered and a run
// that is still going when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	base   context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a stopped scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	cl := cronLogger{log: cfg.Logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		base:    context.Background(),
	}
}

// Add registers task under spec, e.g. "@every 6h" or "15 2 * * *".
func (s *Scheduler) Add(name, spec string, task Task) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		_ = s.RunOnce(s.context(), name, task)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Sugar().Infow("job scheduled", "job", name, "schedule", spec)
	return id, nil
}

// RunOnce executes task immediately with the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context, name string, task Task) error {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := task(runCtx); err != nil {
		s.logger.Sugar().Warnw("job failed", "job", name, "duration", time.Since(start).String(), "error", err)
		return err
	}
	s.logger.Sugar().Debugw("job finished", "job", name, "duration", time.Since(start).String())
	return nil
}

// Start begins firing entries. Runs derive their context from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.base, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
}

// Stop halts the schedule, cancels in-flight runs and waits for them.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-done.Done()
}

// Len reports the number of registered entries.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

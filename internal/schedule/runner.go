package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"subsweep/internal/logging"
	"subsweep/internal/scan"
	"subsweep/internal/services"
)

// Triggers recorded with each run.
const (
	TriggerCLI     = "cli"
	TriggerCron    = "cron"
	TriggerStartup = "startup"
)

// ScanFunc performs one scan. (*scan.Orchestrator).Run satisfies it.
type ScanFunc func(ctx context.Context, progress scan.ProgressFunc) (scan.Summary, error)

// Recorder persists run outcomes.
type Recorder interface {
	Record(ctx context.Context, summary scan.Summary, runErr error) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// Runner serializes scans and drives the cron schedule.
type Runner struct {
	scan      ScanFunc
	lockPath  string
	recorder  Recorder
	retention int
	logger    *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	cron    *cron.Cron
	startup sync.WaitGroup
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRecorder journals every run.
func WithRecorder(recorder Recorder, retention int) Option {
	return func(r *Runner) {
		r.recorder = recorder
		r.retention = retention
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "schedule")
	}
}

// New constructs a Runner that locks lockPath around every scan.
func New(scanFn ScanFunc, lockPath string, opts ...Option) (*Runner, error) {
	if scanFn == nil {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "new", "scan function is required", nil)
	}
	if lockPath == "" {
		return nil, services.Wrap(services.ErrConfiguration, "schedule", "new", "lock path is required", nil)
	}
	r := &Runner{
		scan:     scanFn,
		lockPath: lockPath,
		logger:   logging.NewComponentLogger(nil, "schedule"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type runResult struct {
	summary scan.Summary
}

// RunOnce performs a scan unless one is already running. A trigger that
// arrives while this process is scanning joins the run in flight and receives
// its result; a scan held by another process yields ErrAlreadyRunning.
func (r *Runner) RunOnce(ctx context.Context, trigger string, progress scan.ProgressFunc) (scan.Summary, error) {
	value, err, shared := r.group.Do("scan", func() (any, error) {
		summary, err := r.runLocked(ctx, trigger, progress)
		return runResult{summary: summary}, err
	})
	if shared {
		r.logger.Info("joined scan already in flight", logging.String("trigger", trigger))
	}
	result, _ := value.(runResult)
	return result.summary, err
}

func (r *Runner) runLocked(ctx context.Context, trigger string, progress scan.ProgressFunc) (scan.Summary, error) {
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return scan.Summary{}, fmt.Errorf("ensure lock dir: %w", err)
	}
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return scan.Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return scan.Summary{}, services.Wrap(services.ErrAlreadyRunning, "schedule", "lock",
			"another subsweep process holds "+r.lockPath, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release scan lock", logging.Error(err))
		}
	}()

	ctx = services.WithTrigger(services.WithRunID(ctx, uuid.NewString()), trigger)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("scan started", logging.String("lock", r.lockPath))

	summary, runErr := r.scan(ctx, progress)
	r.record(context.WithoutCancel(ctx), logger, summary, runErr)
	return summary, runErr
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, summary scan.Summary, runErr error) {
	if r.recorder == nil {
		return
	}
	if _, err := r.recorder.Record(ctx, summary, runErr); err != nil {
		logging.WarnWithContext(logger, "failed to record scan history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from `subsweep history`"),
		)
		return
	}
	if removed, err := r.recorder.Prune(ctx, r.retention); err != nil {
		logger.Warn("failed to prune scan history", logging.Error(err))
	} else if removed > 0 {
		logger.Debug("pruned scan history", logging.Int64("removed", removed))
	}
}

// Start registers the cron schedule and starts it. When runOnStart is set a
// scan is triggered immediately in the background. Scans started by the
// schedule use ctx; cancel it to abort a run in flight.
func (r *Runner) Start(ctx context.Context, cronExpr string, runOnStart bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("schedule already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(cronExpr, func() { r.scheduled(ctx, TriggerCron) }); err != nil {
		return services.Wrap(services.ErrConfiguration, "schedule", "parse cron", cronExpr, err)
	}
	c.Start()
	r.cron = c

	r.logger.Info("schedule started",
		logging.String("cron", cronExpr),
		logging.String("next_run", r.nextRunLocked().Format(time.RFC3339)),
	)
	if runOnStart {
		r.startup.Add(1)
		go func() {
			defer r.startup.Done()
			r.scheduled(ctx, TriggerStartup)
		}()
	}
	return nil
}

func (r *Runner) scheduled(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	_, err := r.RunOnce(ctx, trigger, nil)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAlreadyRunning):
		r.logger.Info("skipping scheduled scan; another scan is running", logging.String("trigger", trigger))
	case errors.Is(err, context.Canceled):
	default:
		logging.ErrorWithContext(r.logger, "scheduled scan failed", "scheduled_scan_failed",
			logging.String("trigger", trigger),
			logging.Error(err),
		)
	}
}

// NextRun reports the next scheduled fire time, or zero when stopped.
func (r *Runner) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRunLocked()
}

func (r *Runner) nextRunLocked() time.Time {
	if r.cron == nil {
		return time.Time{}
	}
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the schedule and waits for a running cron job and the startup
// scan to return. Cancel the context passed to Start first to abort a scan in
// flight.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.startup.Wait()
	r.logger.Info("schedule stopped")
}

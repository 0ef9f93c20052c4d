package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// Sync runs dispatched jobs immediately in the calling goroutine and runs
// schedules in process. Delays and uniqueness are ignored.
type Sync struct {
	handlers *Handlers
	logger   *slog.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	started bool
}

// SyncOption configures a Sync queue.
type SyncOption func(*Sync)

// WithSyncLogger sets the queue logger.
func WithSyncLogger(l *slog.Logger) SyncOption {
	return func(s *Sync) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSync creates a Sync queue.
func NewSync(opts ...SyncOption) *Sync {
	s := &Sync{handlers: newHandlers(), logger: logger.NewNope()}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{s.logger})))
	return s
}

func (s *Sync) Handlers() *Handlers { return s.handlers }

// Dispatch runs the job now and returns its error.
func (s *Sync) Dispatch(ctx context.Context, name string, payload any, _ ...DispatchOption) error {
	raw, err := encode(payload)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "running job", slog.String("job", name))
	if err := s.handlers.run(ctx, name, raw); err != nil {
		s.logger.ErrorContext(ctx, "job failed", slog.String("job", name), slog.Any("error", err))
		return err
	}
	return nil
}

// Schedule runs fn on spec once the queue is started.
func (s *Sync) Schedule(name, spec string, fn func(ctx context.Context) error) error {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return err
	}
	s.cron.Schedule(sched, cron.FuncJob(func() {
		if err := fn(context.Background()); err != nil {
			s.logger.Error("scheduled job failed", slog.String("job", name), slog.Any("error", err))
		}
	}))
	return nil
}

// Start starts the scheduler.
func (s *Sync) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.cron.Start()
	s.started = true
	return nil
}

// Stop stops the scheduler and waits for running schedules or ctx.
func (s *Sync) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	s.started = false
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug(msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error(msg, append(kv, slog.Any("error", err))...)
}

func errorf(sentinel error, subject string, err error) error {
	return errors.Join(fmt.Errorf("%w: [%s]", sentinel, subject), err)
}

var _ Queue = (*Sync)(nil)

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// jobArgs carries every job through River.
type jobArgs struct {
	Name    string          `json:"name" river:"unique"`
	Key     string          `json:"key,omitempty" river:"unique"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (jobArgs) Kind() string { return "atomic.job" }

type worker struct {
	river.WorkerDefaults[jobArgs]
	handlers *Handlers
	logger   *slog.Logger
}

func (w *worker) Work(ctx context.Context, job *river.Job[jobArgs]) error {
	log := w.logger.With(
		slog.String("job", job.Args.Name),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
	log.DebugContext(ctx, "running job")
	if err := w.handlers.run(ctx, job.Args.Name, job.Args.Payload); err != nil {
		log.ErrorContext(ctx, "job failed", slog.Any("error", err))
		return err
	}
	return nil
}

// River is a Postgres backed queue. Jobs run on worker goroutines once the
// queue is started; they can be dispatched before.
type River struct {
	pool     *pgxpool.Pool
	handlers *Handlers
	logger   *slog.Logger
	queues   map[string]river.QueueConfig
	periodic []*river.PeriodicJob

	mu      sync.Mutex
	client  *river.Client[pgx.Tx]
	started bool
}

// RiverOption configures a River queue.
type RiverOption func(*River)

// WithRiverLogger sets the queue logger.
func WithRiverLogger(l *slog.Logger) RiverOption {
	return func(r *River) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithWorkers sets the worker count of a named queue.
func WithWorkers(queue string, n int) RiverOption {
	return func(r *River) {
		if n > 0 {
			r.queues[queue] = river.QueueConfig{MaxWorkers: n}
		}
	}
}

// NewRiver creates a River queue over pool.
func NewRiver(pool *pgxpool.Pool, opts ...RiverOption) (*River, error) {
	if pool == nil {
		return nil, ErrNoPool
	}
	r := &River{
		pool:     pool,
		handlers: newHandlers(),
		logger:   logger.NewNope(),
		queues:   map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: 50}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *River) Handlers() *Handlers { return r.handlers }

// Schedule enqueues name on spec. Schedules must be added before the first
// dispatch or Start.
func (r *River) Schedule(name, spec string, fn func(ctx context.Context) error) error {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return ErrAlreadyStarted
	}
	r.handlers.set(name, func(ctx context.Context, _ json.RawMessage) error { return fn(ctx) })
	r.periodic = append(r.periodic, river.NewPeriodicJob(sched, func() (river.JobArgs, *river.InsertOpts) {
		return jobArgs{Name: name}, nil
	}, &river.PeriodicJobOpts{}))
	return nil
}

// Dispatch inserts a job.
func (r *River) Dispatch(ctx context.Context, name string, payload any, opts ...DispatchOption) error {
	client, args, insert, err := r.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := client.Insert(ctx, args, insert); err != nil {
		return errors.Join(ErrDispatchFailed, err)
	}
	return nil
}

// DispatchTx inserts a job visible once tx commits.
func (r *River) DispatchTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...DispatchOption) error {
	client, args, insert, err := r.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := client.InsertTx(ctx, tx, args, insert); err != nil {
		return errors.Join(ErrDispatchFailed, err)
	}
	return nil
}

// Start starts the workers.
func (r *River) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	client, err := r.clientLocked()
	if err != nil {
		return err
	}
	if err := client.Start(ctx); err != nil {
		return err
	}
	r.started = true
	r.logger.InfoContext(ctx, "queue started", slog.Any("jobs", r.handlers.Names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to end.
func (r *River) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	if err := r.client.Stop(ctx); err != nil {
		return err
	}
	r.started = false
	r.logger.InfoContext(ctx, "queue stopped")
	return nil
}

// Ping returns a health check reporting a stopped queue or database.
func (r *River) Ping() func(context.Context) error {
	return func(ctx context.Context) error {
		r.mu.Lock()
		started := r.started
		r.mu.Unlock()
		if !started {
			return ErrNotStarted
		}
		return r.pool.Ping(ctx)
	}
}

func (r *River) prepare(name string, payload any, opts []DispatchOption) (*river.Client[pgx.Tx], jobArgs, *river.InsertOpts, error) {
	if !r.handlers.Has(name) {
		return nil, jobArgs{}, nil, errorf(ErrUnknownJob, name, nil)
	}
	raw, err := encode(payload)
	if err != nil {
		return nil, jobArgs{}, nil, err
	}

	r.mu.Lock()
	client, err := r.clientLocked()
	r.mu.Unlock()
	if err != nil {
		return nil, jobArgs{}, nil, err
	}

	d := applyDispatch(opts)
	args := jobArgs{Name: name, Payload: raw}
	insert := &river.InsertOpts{
		Queue:       d.queue,
		ScheduledAt: d.at,
		MaxAttempts: d.tries,
		Priority:    d.priority,
		Tags:        d.tags,
	}
	if d.uniqueFor > 0 {
		args.Key = d.uniqueKey
		insert.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: d.uniqueFor}
	}
	return client, args, insert, nil
}

func (r *River) clientLocked() (*river.Client[pgx.Tx], error) {
	if r.client != nil {
		return r.client, nil
	}
	workers := river.NewWorkers()
	river.AddWorker(workers, &worker{handlers: r.handlers, logger: r.logger})

	client, err := river.NewClient(riverpgxv5.New(r.pool), &river.Config{
		Queues:       r.queues,
		Workers:      workers,
		PeriodicJobs: r.periodic,
		Logger:       r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

var _ Queue = (*River)(nil)

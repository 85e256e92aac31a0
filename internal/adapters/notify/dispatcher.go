// Package notify delivers ledger events to connected clients and runs fire-and-forget
// background work. Nothing in this package blocks the request path.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/middleware"
)

const defaultTaskTimeout = 30 * time.Second

// Sink receives published events. Implementations may block; the dispatcher calls them from
// worker goroutines only.
type Sink interface {
	Publish(ctx context.Context, evt domain.Event) error
}

type task struct {
	name   string
	logger *slog.Logger
	fn     func(ctx context.Context) error
}

// Dispatcher is a bounded task queue drained by a fixed set of workers. It doubles as the
// NotificationPublisher: every emitted event becomes a task that fans out to the sinks.
type Dispatcher struct {
	tasks       chan task
	workers     int
	sinks       []Sink
	logger      *slog.Logger
	taskTimeout time.Duration
	now         func() time.Time
}

var (
	_ portssvc.TaskQueue             = (*Dispatcher)(nil)
	_ portssvc.NotificationPublisher = (*Dispatcher)(nil)
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTaskTimeout bounds each task run.
func WithTaskTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.taskTimeout = d
		}
	}
}

// WithSinks adds event sinks.
func WithSinks(sinks ...Sink) DispatcherOption {
	return func(disp *Dispatcher) {
		for _, s := range sinks {
			if s != nil {
				disp.sinks = append(disp.sinks, s)
			}
		}
	}
}

// WithDispatcherClock overrides the clock stamped on events.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(disp *Dispatcher) { disp.now = now }
}

// NewDispatcher creates a dispatcher. Workers start in Run.
func NewDispatcher(logger *slog.Logger, workers, queueSize int, opts ...DispatcherOption) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		tasks:       make(chan task, queueSize),
		workers:     workers,
		logger:      logger,
		taskTimeout: defaultTaskTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit enqueues fn without blocking. A full queue drops the task.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context) error) bool {
	return d.enqueue(task{name: name, logger: d.logger, fn: fn})
}

// EmitToUser publishes an event on the user's channel. An empty userID is ignored.
func (d *Dispatcher) EmitToUser(ctx context.Context, userID, name string, payload any) {
	if userID == "" {
		return
	}
	d.emit(ctx, domain.UserChannelFor(userID), name, payload)
}

// EmitToAdmins publishes an event on the admin channel.
func (d *Dispatcher) EmitToAdmins(ctx context.Context, name string, payload any) {
	d.emit(ctx, domain.AdminChannel(), name, payload)
}

func (d *Dispatcher) emit(ctx context.Context, ch domain.Channel, name string, payload any) {
	if len(d.sinks) == 0 {
		return
	}
	evt := domain.Event{Channel: ch, Name: name, Payload: payload, OccurredAt: d.now().UTC()}
	d.enqueue(task{
		name:   "emit " + name,
		logger: middleware.GetLoggerFromCtx(ctx).With(slog.String("channel", ch.String())),
		fn:     func(ctx context.Context) error { return d.fanOut(ctx, evt) },
	})
}

func (d *Dispatcher) fanOut(ctx context.Context, evt domain.Event) error {
	var errs []error
	for _, s := range d.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) enqueue(t task) bool {
	select {
	case d.tasks <- t:
		return true
	default:
		t.logger.Warn("Notification queue full, dropping task", slog.String("task", t.name))
		return false
	}
}

// Run starts the workers and blocks until ctx is done. Tasks still buffered at shutdown are
// drained before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-d.tasks:
					d.run(t)
				}
			}
		}()
	}
	wg.Wait()
	d.drain()
	return nil
}

func (d *Dispatcher) drain() {
	for {
		select {
		case t := <-d.tasks:
			d.run(t)
		default:
			return
		}
	}
}

func (d *Dispatcher) run(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.taskTimeout)
	defer cancel()
	ctx = middleware.WithLogger(ctx, t.logger)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Background task panicked", slog.String("task", t.name), slog.String("panic", fmt.Sprint(r)))
		}
	}()
	if err := t.fn(ctx); err != nil {
		t.logger.Warn("Background task failed", slog.String("task", t.name), slog.String("error", err.Error()))
	}
}

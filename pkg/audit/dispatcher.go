package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// recordSink consumes finished audit records. *Store is the production
// implementation; tests substitute their own.
type recordSink interface {
	Insert(ctx context.Context, rec Record)
}

// DispatcherOptions tunes the deferred write machinery.
type DispatcherOptions struct {
	BufferSize   int           // Records buffered before new ones are dropped.
	WriteTimeout time.Duration // Per-record persistence deadline.
}

// Dispatcher hands audit records to the store off the request path. A single
// worker goroutine consumes a buffered channel, which keeps writes for any
// request from overlapping and never blocks the HTTP response. When the
// buffer is full the record is dropped with a diagnostic — delivery is
// at-most-once by contract.
type Dispatcher struct {
	sink    recordSink
	log     *slog.Logger
	records chan Record
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	opts    DispatcherOptions
}

// NewDispatcher starts the background worker.
func NewDispatcher(sink recordSink, log *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if sink == nil {
		panic("audit: dispatcher sink cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		sink:    sink,
		log:     log,
		records: make(chan Record, opts.BufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		opts:    opts,
	}
	go d.worker()
	return d
}

// Enqueue schedules a record for persistence without blocking. Returns
// ErrDispatcherClosed after shutdown; a full buffer drops the record
// silently apart from a diagnostic warning.
func (d *Dispatcher) Enqueue(rec Record) error {
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}

	select {
	case d.records <- rec:
		return nil
	default:
		d.log.Warn("audit buffer full, record dropped", slog.String("action", string(rec.Action)))
		return nil
	}
}

func (d *Dispatcher) worker() {
	defer close(d.stopped)

	for {
		select {
		case rec := <-d.records:
			d.write(rec)
		case <-d.done:
			// Drain whatever is buffered; anything enqueued after this
			// point is lost, which the at-most-once contract allows.
			for {
				select {
				case rec := <-d.records:
					d.write(rec)
				default:
					return
				}
			}
		}
	}
}

// write persists one record under its own deadline. Request contexts are
// deliberately not used here: the response has already been sent and its
// cancellation must not cancel the audit write.
func (d *Dispatcher) write(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.WriteTimeout)
	defer cancel()
	d.sink.Insert(ctx, rec)
}

// Close stops intake and drains pending records until ctx expires.
// Records not drained in time are lost.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() { close(d.done) })

	select {
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

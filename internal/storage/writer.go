package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-partners/internal/config"
)

var (
	// ErrWriterClosed is returned for writes submitted after Close.
	ErrWriterClosed = errors.New(config.ErrWriterClosed)
	// ErrQueueFull is returned when too many writes are already pending.
	ErrQueueFull = errors.New(config.ErrQueueFull)
	// ErrWriterStuck is returned by Close when the backend never finishes.
	ErrWriterStuck = errors.New(config.ErrWriterStuck)
)

type writeJob struct {
	ctx    context.Context
	value  string
	result chan error
	once   sync.Once
	timer  *time.Timer
}

// resolve reports the outcome once; later calls are ignored.
func (j *writeJob) resolve(err error) {
	j.once.Do(func() { j.result <- err })
}

// Writer applies snapshot writes for a single key strictly in submission
// order. The submitter always hears back within the timeout, counted from
// Submit, even while the worker is stuck behind an earlier write. The worker
// itself waits for each write to return before starting the next one, so an
// older snapshot can never land on top of a newer one.
type Writer struct {
	kv      KeyValue
	key     string
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	jobs   chan *writeJob
	done   chan struct{}
}

// NewWriter starts the worker goroutine for key.
func NewWriter(kv KeyValue, key string, timeout time.Duration) *Writer {
	w := &Writer{
		kv:      kv,
		key:     key,
		timeout: timeout,
		jobs:    make(chan *writeJob, config.WriteQueueSize),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues value and returns a channel that receives the outcome
// exactly once, at the latest when the timeout expires. It never blocks: a
// full queue fails at once with ErrQueueFull. Callers that need ordering must
// call Submit in mutation order.
func (w *Writer) Submit(ctx context.Context, value string) <-chan error {
	job := &writeJob{ctx: ctx, value: value, result: make(chan error, 1)}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		job.resolve(ErrWriterClosed)
		return job.result
	}

	job.timer = time.AfterFunc(w.timeout, func() { job.resolve(context.DeadlineExceeded) })
	select {
	case w.jobs <- job:
	default:
		job.timer.Stop()
		job.resolve(ErrQueueFull)
	}
	return job.result
}

// Close stops accepting writes and waits for queued writes to finish. Each
// pending write gets one timeout; past that Close gives up with
// ErrWriterStuck and leaves the worker behind.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	pending := len(w.jobs) + 1
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-time.After(time.Duration(pending) * w.timeout):
		slog.Warn(config.ErrWriterStuck,
			config.LogKeyComponent, config.CompWriter,
			config.LogKeyKey, w.key)
		return ErrWriterStuck
	}
}

func (w *Writer) run() {
	defer close(w.done)
	log := slog.With(config.LogKeyComponent, config.CompWriter, config.LogKeyKey, w.key)

	for job := range w.jobs {
		w.apply(log, job)
	}
	log.Debug(config.MsgWriterStop)
}

func (w *Writer) apply(log *slog.Logger, job *writeJob) {
	defer job.timer.Stop()

	start := time.Now()
	ctx, cancel := context.WithTimeout(job.ctx, w.timeout)
	defer cancel()

	finished := make(chan error, 1)
	go func() {
		finished <- w.kv.SetItem(ctx, w.key, job.value)
	}()

	select {
	case err := <-finished:
		job.resolve(err)
	case <-ctx.Done():
		job.resolve(ctx.Err())
		err := <-finished
		log.Warn(config.MsgWriteLate,
			config.LogKeyDuration, time.Since(start).Milliseconds(),
			config.LogKeyError, err)
	}
}

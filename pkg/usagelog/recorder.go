package usagelog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RecorderConfig configures the async recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel.
	AsyncBuffer int

	// WriteTimeout bounds each individual write.
	WriteTimeout time.Duration
}

// DefaultRecorderConfig matches the teacher's evidence recorder defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{AsyncBuffer: 1000, WriteTimeout: 5 * time.Second}
}

// Recorder appends usage-log entries off the request's critical path: a
// completed request enqueues its entry and returns immediately, and a
// background worker drains the queue, grounded on
// pkg/evidence/recorder/recorder.go's async-channel-plus-worker shape.
type Recorder struct {
	store  *Store
	cfg    RecorderConfig
	queue  chan Entry
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewRecorder starts a recorder backed by store.
func NewRecorder(store *Store, cfg RecorderConfig) *Recorder {
	if cfg.AsyncBuffer <= 0 {
		cfg = DefaultRecorderConfig()
	}
	r := &Recorder{
		store:  store,
		cfg:    cfg,
		queue:  make(chan Entry, cfg.AsyncBuffer),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "usagelog.recorder"),
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Record enqueues e for writing. It never blocks the caller beyond the
// buffer's capacity, and never returns an error: a full buffer or a closed
// recorder just drops the entry, logged at Warn, per spec.md §7's "cache
// failures on the log table are swallowed."
func (r *Recorder) Record(e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	select {
	case r.queue <- e:
	default:
		r.logger.Warn("usage log queue full, dropping entry", "buffer_size", r.cfg.AsyncBuffer)
	}
}

// Close drains the queue and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case e := <-r.queue:
			r.write(e)
		case <-r.done:
			for {
				select {
				case e := <-r.queue:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()
	if err := r.store.Append(ctx, e); err != nil {
		r.logger.Warn("failed to append usage log entry", "error", err)
	}
}

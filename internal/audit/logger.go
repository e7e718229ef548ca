package audit

import (
	"context"
	"sync"
	"time"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sink is a destination for security events
type Sink interface {
	Name() string
	Write(ctx context.Context, event *domain.SecurityEvent) error
}

// Options tunes the logger queue
type Options struct {
	BufferSize   int
	WriteTimeout time.Duration
}

// Logger records security events without blocking the caller. Events are
// queued and written to every sink by a single background worker. A full
// queue drops the event; sink failures are logged and never surface.
type Logger struct {
	sinks   []Sink
	queue   chan domain.SecurityEvent
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewLogger creates a logger and starts its worker
func NewLogger(opts Options, sinks ...Sink) *Logger {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	l := &Logger{
		sinks:   sinks,
		queue:   make(chan domain.SecurityEvent, opts.BufferSize),
		timeout: opts.WriteTimeout,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues event with the given severity. Request metadata found in ctx
// is stamped on the event.
func (l *Logger) Log(ctx context.Context, event domain.SecurityEvent, severity domain.Severity) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = l.now().UTC()
	}
	event.Severity = severity

	if info, ok := RequestFrom(ctx); ok {
		if event.IPAddress == "" {
			event.IPAddress = info.IPAddress
		}
		if event.UserAgent == "" {
			event.UserAgent = info.UserAgent
		}
		if info.Path != "" || info.RequestID != "" {
			md := make(map[string]any, len(event.Metadata)+3)
			for k, v := range event.Metadata {
				md[k] = v
			}
			if info.Path != "" {
				md["path"] = info.Path
				md["method"] = info.Method
			}
			if info.RequestID != "" {
				md["requestId"] = info.RequestID
			}
			event.Metadata = md
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		log.Warn().Str("action", event.Action).Msg("Audit logger closed, security event dropped")
		return
	}

	select {
	case l.queue <- event:
		metrics.AuditEventsTotal.WithLabelValues(string(severity)).Inc()
	default:
		metrics.AuditEventsDropped.Inc()
		log.Warn().Str("action", event.Action).Msg("Audit queue full, security event dropped")
	}
}

func (l *Logger) run() {
	defer close(l.done)
	for event := range l.queue {
		l.write(&event)
	}
}

func (l *Logger) write(event *domain.SecurityEvent) {
	for _, sink := range l.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		if err := sink.Write(ctx, event); err != nil {
			metrics.AuditSinkErrors.WithLabelValues(sink.Name()).Inc()
			log.Error().Err(err).
				Str("sink", sink.Name()).
				Str("action", event.Action).
				Msg("Failed to write security event")
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be written
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

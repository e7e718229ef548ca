package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// RepositorySink persists events through the security event repository
type RepositorySink struct {
	repo domain.SecurityEventRepository
}

func NewRepositorySink(repo domain.SecurityEventRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Name() string { return "postgres" }

func (s *RepositorySink) Write(ctx context.Context, event *domain.SecurityEvent) error {
	return s.repo.Insert(ctx, event)
}

// LogSink writes one structured log line per event
type LogSink struct{}

func NewLogSink() LogSink { return LogSink{} }

func (LogSink) Name() string { return "log" }

func (LogSink) Write(_ context.Context, event *domain.SecurityEvent) error {
	var e *zerolog.Event
	switch event.Severity {
	case domain.SeverityCritical, domain.SeverityError:
		e = log.Error()
	case domain.SeverityWarning:
		e = log.Warn()
	default:
		e = log.Info()
	}

	e = e.Str("event_id", event.ID.String()).
		Str("action", event.Action).
		Str("resource", event.Resource).
		Str("severity", string(event.Severity)).
		Str("ip", event.IPAddress)
	if event.UserID != nil {
		e = e.Str("user_id", event.UserID.String())
	}
	if event.WorkspaceID != nil {
		e = e.Str("workspace_id", event.WorkspaceID.String())
	}
	if len(event.Metadata) > 0 {
		e = e.Interface("metadata", event.Metadata)
	}
	e.Msg("Security event")
	return nil
}

// KafkaSink publishes events as JSON, keyed by workspace so one tenant's
// events stay ordered within a partition.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, event *domain.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode security event: %w", err)
	}

	var key []byte
	if event.WorkspaceID != nil {
		key = []byte(event.WorkspaceID.String())
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "severity", Value: []byte(event.Severity)},
		},
	})
}

// Close releases the writer
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

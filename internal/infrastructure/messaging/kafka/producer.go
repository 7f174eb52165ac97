package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	skafka "github.com/segmentio/kafka-go"

	"github.com/jinlabs/users-management/internal/core/domain"
	"github.com/jinlabs/users-management/internal/core/ports"
)

const eventTypeHeader = "event-type"

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Producer writes user lifecycle events to a topic, keyed by user id so every
// event for one user lands on the same partition.
type Producer struct {
	writer Writer
}

// NewProducer creates a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

// NewProducerWithWriter allows injecting a test writer.
func NewProducerWithWriter(w Writer) *Producer {
	return &Producer{writer: w}
}

var _ ports.EventSink = (*Producer)(nil)

func (p *Producer) Write(ctx context.Context, event domain.UserEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	msg := skafka.Message{
		Key:     []byte(strconv.FormatInt(event.UserID, 10)),
		Value:   value,
		Headers: []skafka.Header{{Key: eventTypeHeader, Value: []byte(event.Type)}},
		Time:    event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// LogSink stands in for the producer when no brokers are configured; events
// are only logged.
type LogSink struct {
	Log zerolog.Logger
}

func (s LogSink) Write(_ context.Context, event domain.UserEvent) error {
	s.Log.Debug().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Int64("user_id", event.UserID).
		Msg("event discarded, no broker configured")
	return nil
}

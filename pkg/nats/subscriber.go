package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const nakDelay = 5 * time.Second

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc        *nats.Conn
	js        jetstream.JetStream
	log       logger.ILogger
	consumers []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, log: log}, nil
}

// EventFromMessage rebuilds an event from a stream message; the type is the subject suffix.
func EventFromMessage(subject string, data []byte, occurredAt time.Time) (events.NoteEvent, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return events.NoteEvent{}, err
	}
	return events.NoteEvent{
		Type:       strings.TrimPrefix(subject, SubjectPrefix),
		Data:       payload,
		OccurredAt: occurredAt,
	}, nil
}

// Subscribe attaches a durable consumer for the given event types. Messages whose
// handler fails are nacked and redelivered after a delay, up to MaxDeliver times.
func (s *Subscriber) Subscribe(ctx context.Context, durableName string, eventTypes []string, handler EventHandler) error {
	subjects := make([]string, len(eventTypes))
	for i, t := range eventTypes {
		subjects[i] = SubjectPrefix + t
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:        durableName,
		FilterSubjects: subjects,
		AckPolicy:      jetstream.AckExplicitPolicy,
		MaxDeliver:     10,
		BackOff:        []time.Duration{time.Second, 5 * time.Second, 30 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		occurredAt := time.Now()
		if meta, err := msg.Metadata(); err == nil {
			occurredAt = meta.Timestamp
		}

		event, err := EventFromMessage(msg.Subject(), msg.Data(), occurredAt)
		if err != nil {
			s.log.Error("NATS", "Malformed event dropped", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.log.Warn("NATS", "Handler failed, will retry", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.NakWithDelay(nakDelay)
			return
		}

		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumers = append(s.consumers, cc)

	s.log.Info("NATS", "Subscribed", map[string]interface{}{"subjects": subjects, "durable": durableName})
	return nil
}

// Close stops consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.consumers {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}

package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// producer is the subset of the Kafka client the publisher needs. Tests
// inject a fake; production wires *kgo.Client.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Close()
}

// KafkaPublisher ships audit events to a Kafka topic through a bounded
// buffer. When the buffer is full the event is dropped and counted rather
// than stalling the request path.
type KafkaPublisher struct {
	client producer
	topic  string
	logger *slog.Logger
	events chan Event
	done   chan struct{}
}

const publishBuffer = 256

// NewKafkaPublisher connects to the brokers, ensures the topic exists, and
// starts the publish worker.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}

	// Best-effort topic bootstrap; brokers with auto-create enabled make this
	// a no-op.
	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopics(ctx, 1, 1, nil, topic); err != nil {
		logger.Warn("audit topic bootstrap failed", "topic", topic, "error", err)
	}

	p := newPublisher(client, topic, logger)
	return p, nil
}

func newPublisher(client producer, topic string, logger *slog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: logger,
		events: make(chan Event, publishBuffer),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues an event without blocking the request path. When the
// buffer is full the event is dropped and logged.
func (p *KafkaPublisher) Publish(_ context.Context, event Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "type", event.Type)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for event := range p.events {
		payload, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("marshal audit event", "type", event.Type, "error", err)
			continue
		}
		record := &kgo.Record{
			Topic: p.topic,
			Key:   []byte(event.Type),
			Value: payload,
		}
		p.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
			if err != nil {
				p.logger.Error("produce audit event", "type", event.Type, "error", err)
			}
		})
	}
}

// Close drains pending events and releases the Kafka client.
func (p *KafkaPublisher) Close() {
	close(p.events)
	<-p.done
	p.client.Close()
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	id "certdedup/pkg/domain"
)

// KafkaSink publishes serialized events to a topic. Satisfied by
// internal/platform/kafka.Producer.
type KafkaSink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily; when a Kafka
// sink is configured, events fan out there as well.
type Publisher struct {
	store Store
	kafka KafkaSink
}

type PublisherOption func(p *Publisher)

func WithKafkaSink(sink KafkaSink) PublisherOption {
	return func(p *Publisher) {
		p.kafka = sink
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if p.kafka != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal audit event: %w", err)
		}
		if err := p.kafka.Publish(ctx, event.SubjectID.String(), payload); err != nil {
			return fmt.Errorf("publish audit event: %w", err)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, subjectID id.SubjectID) ([]Event, error) {
	return p.store.ListBySubject(ctx, subjectID)
}

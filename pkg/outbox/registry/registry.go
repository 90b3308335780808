package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
)

// Message attribute names set by the publisher and read by consumers.
const (
	AttrEventID       = "event_id"
	AttrEventType     = "event_type"
	AttrAggregateType = "aggregate_type"
	AttrAggregateID   = "aggregate_id"
	AttrCreatedAt     = "created_at"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row or a delivered message.
type ResolvedEvent struct {
	Descriptor  EventDescriptor
	AggregateID uuid.UUID
	Envelope    outbox.PayloadEnvelope
	Payload     interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the row or message should not be retried.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry routes every domain event to the configured domain topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.DomainTopic == "" {
		return nil, fmt.Errorf("domain topic is required")
	}
	topic := cfg.DomainTopic

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventSaleCompleted,
			AggregateType:  enums.AggregateSale,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.SaleCompletedEvent{} },
		},
		{
			EventType:      enums.EventSaleFailed,
			AggregateType:  enums.AggregateSale,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.SaleFailedEvent{} },
		},
		{
			EventType:      enums.EventSaleRefunded,
			AggregateType:  enums.AggregateSale,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.SaleRefundedEvent{} },
		},
		{
			EventType:      enums.EventRatingRecomputeRequested,
			AggregateType:  enums.AggregateProduct,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.RatingRecomputeRequested{} },
		},
	} {
		reg.entries[desc.EventType] = desc
	}
	return reg, nil
}

// Resolve validates an outbox row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	return r.resolve(event.EventType, event.AggregateType, event.AggregateID, event.Payload)
}

// ResolveMessage decodes a delivered message using the attributes the publisher sets.
func (r *EventRegistry) ResolveMessage(attrs map[string]string, data []byte) (*ResolvedEvent, error) {
	aggregateID, err := uuid.Parse(attrs[AttrAggregateID])
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("invalid aggregate_id: %w", err))
	}
	return r.resolve(
		enums.OutboxEventType(attrs[AttrEventType]),
		enums.OutboxAggregateType(attrs[AttrAggregateType]),
		aggregateID,
		data,
	)
}

func (r *EventRegistry) resolve(eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID, raw []byte) (*ResolvedEvent, error) {
	desc, ok := r.entries[eventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", eventType))
	}
	if desc.AggregateType != aggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, aggregateType))
	}
	if aggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(raw)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", eventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", eventType, err))
	}

	return &ResolvedEvent{
		Descriptor:  desc,
		AggregateID: aggregateID,
		Envelope:    envelope,
		Payload:     payload,
	}, nil
}

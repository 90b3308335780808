package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
)

func TestResolveSaleCompleted(t *testing.T) {
	reg := newTestRegistry(t)
	saleID := uuid.New()

	resolved, err := reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventSaleCompleted,
		AggregateType: enums.AggregateSale,
		AggregateID:   saleID,
		Payload:       mustEnvelope(t, payloads.SaleCompletedEvent{SaleID: saleID, OrderID: "ORD1"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "domain-events", resolved.Descriptor.Topic)
	assert.Equal(t, saleID, resolved.AggregateID)

	payload, ok := resolved.Payload.(*payloads.SaleCompletedEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	assert.Equal(t, "ORD1", payload.OrderID)
	assert.NotEmpty(t, resolved.Envelope.EventID)
}

func TestResolveMessage(t *testing.T) {
	reg := newTestRegistry(t)
	productID := uuid.New()

	resolved, err := reg.ResolveMessage(map[string]string{
		AttrEventType:     string(enums.EventRatingRecomputeRequested),
		AttrAggregateType: string(enums.AggregateProduct),
		AttrAggregateID:   productID.String(),
	}, mustEnvelope(t, payloads.RatingRecomputeRequested{ProductID: productID, Reason: "review_created"}))
	require.NoError(t, err)

	payload := resolved.Payload.(*payloads.RatingRecomputeRequested)
	assert.Equal(t, productID, payload.ProductID)
}

func TestResolveRejections(t *testing.T) {
	reg := newTestRegistry(t)
	valid := mustEnvelope(t, payloads.SaleFailedEvent{OrderID: "ORD1"})

	cases := map[string]models.OutboxEvent{
		"unknown type": {
			EventType: "mystery", AggregateType: enums.AggregateSale, AggregateID: uuid.New(), Payload: valid,
		},
		"aggregate mismatch": {
			EventType: enums.EventSaleFailed, AggregateType: enums.AggregateProduct, AggregateID: uuid.New(), Payload: valid,
		},
		"missing aggregate id": {
			EventType: enums.EventSaleFailed, AggregateType: enums.AggregateSale, Payload: valid,
		},
		"bad envelope": {
			EventType: enums.EventSaleFailed, AggregateType: enums.AggregateSale, AggregateID: uuid.New(), Payload: []byte("{"),
		},
		"null data": {
			EventType: enums.EventSaleFailed, AggregateType: enums.AggregateSale, AggregateID: uuid.New(),
			Payload: []byte(`{"version":1,"eventId":"e","data":null}`),
		},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			assert.True(t, errors.As(err, &nonRetry))
		})
	}

	_, err := reg.ResolveMessage(map[string]string{AttrAggregateID: "nope"}, valid)
	require.Error(t, err)
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}

func newTestRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain-events"})
	require.NoError(t, err)
	return reg
}

func mustEnvelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return env
}

package ratings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
	"github.com/patelpulse/pulse-backend/pkg/outbox/registry"
)

type noopReceiver struct{}

func (noopReceiver) Receive(context.Context, func(context.Context, *pubsub.Message)) error { return nil }

func newTestConsumer(t *testing.T) (*Consumer, func() *gorm.DB) {
	t.Helper()
	client := dbtest.Open(t)
	reg, err := registry.NewEventRegistry(config.PubSubConfig{DomainTopic: "domain"})
	require.NoError(t, err)
	c, err := NewConsumer(ConsumerParams{
		Subscription: noopReceiver{},
		Registry:     reg,
		DB:           client,
		Logger:       logger.Nop(),
	})
	require.NoError(t, err)
	return c, client.DB
}

func recomputeMessage(t *testing.T, productID uuid.UUID) (map[string]string, []byte) {
	t.Helper()
	data, err := json.Marshal(payloads.RatingRecomputeRequested{ProductID: productID, Reason: "review_approved"})
	require.NoError(t, err)
	env, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now(), Data: data})
	require.NoError(t, err)
	return map[string]string{
		registry.AttrEventType:     string(enums.EventRatingRecomputeRequested),
		registry.AttrAggregateType: string(enums.AggregateProduct),
		registry.AttrAggregateID:   productID.String(),
	}, env
}

func TestConsumerRecomputesRating(t *testing.T) {
	c, conn := newTestConsumer(t)
	product := &models.Product{Slug: "kit", Title: "Kit", Description: "d", Currency: "INR", IsActive: true}
	require.NoError(t, conn().Create(product).Error)
	for _, rating := range []int{5, 4} {
		require.NoError(t, conn().Create(&models.Review{
			ProductID: product.ID, AuthorName: "a", AuthorEmail: "a@example.com",
			Rating: rating, Comment: "c", Status: enums.ReviewStatusApproved,
		}).Error)
	}

	attrs, data := recomputeMessage(t, product.ID)
	assert.True(t, c.process(context.Background(), "m1", attrs, data))

	var stored models.Product
	require.NoError(t, conn().First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 4.5, stored.Rating)
	assert.Equal(t, 2, stored.ReviewCount)
}

func TestConsumerAcksOtherEventsAndBadPayloads(t *testing.T) {
	c, _ := newTestConsumer(t)

	assert.True(t, c.process(context.Background(), "m1", map[string]string{registry.AttrEventType: "sale_completed"}, nil))

	attrs, _ := recomputeMessage(t, uuid.New())
	assert.True(t, c.process(context.Background(), "m2", attrs, []byte("{")))
}

func TestConsumerAcksMissingProduct(t *testing.T) {
	c, _ := newTestConsumer(t)
	attrs, data := recomputeMessage(t, uuid.New())
	assert.True(t, c.process(context.Background(), "m1", attrs, data))
}

func TestNewConsumerValidation(t *testing.T) {
	_, err := NewConsumer(ConsumerParams{})
	require.Error(t, err)
}

package ratings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
)

func TestInlineSchedulerRecomputes(t *testing.T) {
	client := dbtest.Open(t)
	product := seedProduct(t, client)
	seedReview(t, client, product.ID, 5, enums.ReviewStatusApproved)

	sched := NewInlineScheduler(nil, nil)
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return sched.Schedule(context.Background(), tx, product.ID, ReasonReviewApproved)
	}))

	var stored models.Product
	require.NoError(t, client.DB().First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 5.0, stored.Rating)
	assert.Equal(t, 1, stored.ReviewCount)
}

func TestOutboxSchedulerQueuesRequest(t *testing.T) {
	client := dbtest.Open(t)
	product := seedProduct(t, client)

	sched := NewOutboxScheduler(outbox.NewService(outbox.NewRepository(client.DB()), nil))
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return sched.Schedule(context.Background(), tx, product.ID, ReasonReviewCreated)
	}))

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventRatingRecomputeRequested, events[0].EventType)
	assert.Equal(t, product.ID, events[0].AggregateID)

	var stored models.Product
	require.NoError(t, client.DB().First(&stored, "id = ?", product.ID).Error)
	assert.Zero(t, stored.ReviewCount)
}

package ratings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
)

// Reasons recorded with each recompute request.
const (
	ReasonReviewCreated  = "review_created"
	ReasonReviewApproved = "review_approved"
	ReasonReviewRejected = "review_rejected"
	ReasonReviewDeleted  = "review_deleted"
	ReasonManual         = "manual"
)

// Scheduler arranges for a product's rating to be recomputed after a review
// mutation, within the mutation's transaction.
type Scheduler interface {
	Schedule(ctx context.Context, tx *gorm.DB, productID uuid.UUID, reason string) error
}

// InlineScheduler recomputes immediately inside the caller's transaction.
type InlineScheduler struct {
	agg     *Aggregator
	metrics *metrics.RatingMetrics
}

func NewInlineScheduler(agg *Aggregator, m *metrics.RatingMetrics) *InlineScheduler {
	if agg == nil {
		agg = NewAggregator()
	}
	return &InlineScheduler{agg: agg, metrics: m}
}

func (s *InlineScheduler) Schedule(ctx context.Context, tx *gorm.DB, productID uuid.UUID, reason string) error {
	_, err := s.agg.Recompute(ctx, tx, productID)
	s.metrics.IncRecompute(reason, err)
	return err
}

// OutboxScheduler queues a recompute request for the ratings worker.
type OutboxScheduler struct {
	emitter outbox.Emitter
}

func NewOutboxScheduler(emitter outbox.Emitter) *OutboxScheduler {
	return &OutboxScheduler{emitter: emitter}
}

func (s *OutboxScheduler) Schedule(ctx context.Context, tx *gorm.DB, productID uuid.UUID, reason string) error {
	return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRatingRecomputeRequested,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		Data:          payloads.RatingRecomputeRequested{ProductID: productID, Reason: reason},
	})
}

package ratings

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
	"github.com/patelpulse/pulse-backend/pkg/outbox/registry"
)

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type messageResolver interface {
	ResolveMessage(attrs map[string]string, data []byte) (*registry.ResolvedEvent, error)
}

type ConsumerParams struct {
	Subscription receiver
	Registry     messageResolver
	DB           txRunner
	Aggregator   *Aggregator
	Logger       *logger.Logger
	Metrics      *metrics.RatingMetrics
}

// Consumer applies rating recompute requests delivered over the domain subscription.
type Consumer struct {
	subscription receiver
	registry     messageResolver
	db           txRunner
	agg          *Aggregator
	logg         *logger.Logger
	metrics      *metrics.RatingMetrics
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("database required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	agg := params.Aggregator
	if agg == nil {
		agg = NewAggregator()
	}
	return &Consumer{
		subscription: params.Subscription,
		registry:     params.Registry,
		db:           params.DB,
		agg:          agg,
		logg:         params.Logger,
		metrics:      params.Metrics,
	}, nil
}

// Run blocks receiving messages until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process returns true when the message should be acked.
func (c *Consumer) process(ctx context.Context, messageID string, attrs map[string]string, data []byte) bool {
	eventType := attrs[registry.AttrEventType]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventRatingRecomputeRequested) {
		c.logg.Debug(logCtx, "skipping non-rating event")
		return true
	}

	resolved, err := c.registry.ResolveMessage(attrs, data)
	if err != nil {
		var nonRetry registry.NonRetryableError
		if errors.As(err, &nonRetry) {
			c.logg.Error(logCtx, "dropping undecodable rating request", err)
			return true
		}
		c.logg.Error(logCtx, "failed to resolve rating request", err)
		return false
	}
	req, ok := resolved.Payload.(*payloads.RatingRecomputeRequested)
	if !ok {
		c.logg.Error(logCtx, "unexpected payload type", fmt.Errorf("%T", resolved.Payload))
		return true
	}
	logCtx = c.logg.WithField(logCtx, "product_id", req.ProductID.String())

	var summary Summary
	err = c.db.WithTx(ctx, func(tx *gorm.DB) error {
		var recomputeErr error
		summary, recomputeErr = c.agg.Recompute(ctx, tx, req.ProductID)
		return recomputeErr
	})
	c.metrics.IncRecompute(req.Reason, err)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			c.logg.Warn(logCtx, "rating request for missing product")
			return true
		}
		c.logg.Error(logCtx, "rating recompute failed", err)
		return false
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"rating":       summary.Rating,
		"review_count": summary.ReviewCount,
	}), "product rating recomputed")
	return true
}

package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/patelpulse/pulse-backend/pkg/logger"
)

const (
	defaultCheckoutTTL   = 48 * time.Hour
	checkoutExpiryReason = "checkout expired before payment"
)

type CheckoutExpiryJobParams struct {
	Logger *logger.Logger
	Sales  abandonedSaleExpirer
	TTL    time.Duration
}

type abandonedSaleExpirer interface {
	ExpireAbandoned(ctx context.Context, cutoff, now time.Time, reason string) (int64, error)
}

// NewCheckoutExpiryJob cancels sales that stayed created/pending past the TTL.
// Sales the browser already verified are left for the gateway webhook.
func NewCheckoutExpiryJob(params CheckoutExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultCheckoutTTL
	}
	return &checkoutExpiryJob{
		logg:  params.Logger,
		sales: params.Sales,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

type checkoutExpiryJob struct {
	logg  *logger.Logger
	sales abandonedSaleExpirer
	ttl   time.Duration
	now   func() time.Time
}

func (j *checkoutExpiryJob) Name() string { return "checkout-expiry" }

func (j *checkoutExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.ttl)
	expired, err := j.sales.ExpireAbandoned(ctx, cutoff, now, checkoutExpiryReason)
	if err != nil {
		return fmt.Errorf("checkout expiry: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"sales_expired": expired,
	}), "abandoned checkouts expired")
	return nil
}

package webhooks

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/internal/payments"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
)

const (
	maxWebhookBody = 1 << 20

	msgMissingSignature = "Missing signature"
	msgInvalidSignature = "Invalid signature"
	msgProcessingFailed = "Webhook processing failed"
)

type PaymentWebhookService interface {
	Process(ctx context.Context, d payments.Delivery) (*payments.Result, error)
	RecordRejected(ctx context.Context, d payments.Delivery, cause error)
}

// Guard dedupes deliveries by gateway event id.
type Guard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// SecretSource supplies the shared webhook secret.
type SecretSource interface {
	WebhookSecret() string
}

// RazorpayWebhook verifies and applies Razorpay payment callbacks. Anything
// other than a bad signature or a processing failure is acknowledged with 200.
func RazorpayWebhook(svc PaymentWebhookService, secrets SecretSource, guard Guard, logg *logger.Logger) http.HandlerFunc {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		receivedAt := time.Now().UTC()

		if svc == nil || secrets == nil {
			logg.Error(ctx, "razorpay webhook not configured", nil)
			responses.WriteAckError(w, http.StatusInternalServerError, msgProcessingFailed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			logg.Error(ctx, "read webhook body", err)
			responses.WriteAckError(w, http.StatusInternalServerError, msgProcessingFailed)
			return
		}

		delivery := payments.Delivery{
			EventID:    strings.TrimSpace(r.Header.Get(razorpay.EventIDHeader)),
			Body:       body,
			ReceivedAt: receivedAt,
		}
		ctx = logg.WithField(ctx, "webhook_event_id", delivery.EventID)

		signature := r.Header.Get(razorpay.SignatureHeader)
		if strings.TrimSpace(signature) == "" {
			svc.RecordRejected(ctx, delivery, pkgerrors.New(pkgerrors.CodeSignature, "signature header missing"))
			logg.Warn(ctx, "razorpay webhook without signature")
			responses.WriteAckError(w, http.StatusBadRequest, msgMissingSignature)
			return
		}
		if !razorpay.VerifyWebhookSignature(body, secrets.WebhookSecret(), signature) {
			svc.RecordRejected(ctx, delivery, pkgerrors.New(pkgerrors.CodeSignature, "signature mismatch"))
			logg.Warn(ctx, "razorpay webhook signature mismatch")
			responses.WriteAckError(w, http.StatusBadRequest, msgInvalidSignature)
			return
		}
		delivery.SignatureValid = true

		processed := false
		if guard != nil && delivery.EventID != "" {
			seen, err := guard.CheckAndMark(ctx, delivery.EventID)
			switch {
			case err != nil:
				// sale transitions are replay-safe without the cache
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "webhook idempotency check unavailable")
			case seen:
				logg.Info(ctx, "duplicate razorpay webhook acknowledged")
				responses.WriteAck(w)
				return
			default:
				// runs on error returns and on panics unwinding to the recoverer
				defer func() {
					if processed {
						return
					}
					if relErr := guard.Release(context.WithoutCancel(ctx), delivery.EventID); relErr != nil {
						logg.Error(ctx, "release webhook idempotency key", relErr)
					}
				}()
			}
		}

		if _, err := svc.Process(ctx, delivery); err != nil {
			responses.WriteAckError(w, http.StatusInternalServerError, msgProcessingFailed)
			return
		}
		processed = true
		responses.WriteAck(w)
	}
}

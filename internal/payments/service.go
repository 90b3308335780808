package payments

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/outbox/payloads"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Delivery is one inbound webhook request as received over HTTP.
type Delivery struct {
	EventID        string
	Body           []byte
	SignatureValid bool
	ReceivedAt     time.Time
}

// Result reports what a delivery did to its sale.
type Result struct {
	EventType string
	Outcome   enums.WebhookOutcome
	Sale      *models.Sale
}

type ServiceParams struct {
	Sales             *sales.Repository
	EventLog          *EventLog
	Outbox            outbox.Emitter
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.WebhookMetrics
	Clock             func() time.Time
}

// Service applies gateway payment events to sales.
type Service struct {
	sales    *sales.Repository
	eventLog *EventLog
	outbox   outbox.Emitter
	txRunner txRunner
	logg     *logger.Logger
	metrics  *metrics.WebhookMetrics
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Sales == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sales repository required")
	}
	if params.EventLog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook event log required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		sales:    params.Sales,
		eventLog: params.EventLog,
		outbox:   params.Outbox,
		txRunner: params.TransactionRunner,
		logg:     logg,
		metrics:  params.Metrics,
		now:      clock,
	}, nil
}

// RecordRejected logs a delivery that failed signature verification. It never
// touches a sale and its own failure is only logged.
func (s *Service) RecordRejected(ctx context.Context, d Delivery, cause error) {
	d.SignatureValid = false
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = s.now().UTC()
	}
	eventType := peekEventType(d.Body)
	entry := newLogEntry(d, eventType, "", enums.WebhookOutcomeRejected, cause)
	if err := s.eventLog.Append(ctx, nil, entry); err != nil {
		s.logg.Error(ctx, "failed to record rejected webhook", err)
	}
	s.metrics.Observe(metrics.WebhookEventUnverified, enums.WebhookOutcomeRejected.String(), 0)
}

// Process decodes a verified delivery and applies it. Unknown sales and
// unsupported events are acknowledged; only decode and persistence failures
// return an error, so the gateway retries them.
func (s *Service) Process(ctx context.Context, d Delivery) (*Result, error) {
	start := s.now()
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = start.UTC()
	}

	var event razorpay.WebhookEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return nil, s.fail(ctx, d, "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode webhook payload"))
	}
	eventType := strings.TrimSpace(event.Event)
	ctx = s.logg.WithFields(ctx, map[string]any{"webhook_event": eventType, "webhook_event_id": d.EventID})

	if eventType != razorpay.EventPaymentCaptured && eventType != razorpay.EventPaymentFailed {
		s.logg.Info(ctx, "ignoring unsupported webhook event")
		return s.finish(ctx, d, eventType, "", &Result{EventType: eventType, Outcome: enums.WebhookOutcomeIgnored}, start)
	}

	payment := event.Payment()
	if payment == nil || strings.TrimSpace(payment.OrderID) == "" {
		return nil, s.fail(ctx, d, eventType, "", pkgerrors.New(pkgerrors.CodeInternal, "payment entity missing order id"))
	}
	gatewayOrderID := strings.TrimSpace(payment.OrderID)
	ctx = s.logg.WithGatewayOrderID(ctx, gatewayOrderID)

	var result *Result
	var reason string
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		sale, err := repo.FindByGatewayOrderIDForUpdate(ctx, gatewayOrderID)
		if err != nil {
			return err
		}
		if sale == nil {
			result = &Result{EventType: eventType, Outcome: enums.WebhookOutcomeNotFound}
			return s.eventLog.Append(ctx, tx, newLogEntry(d, eventType, gatewayOrderID, result.Outcome, nil))
		}

		now := s.now().UTC()
		occurredAt := event.OccurredAt()
		var dec decision
		if eventType == razorpay.EventPaymentCaptured {
			dec = decideCapture(sale, payment, occurredAt)
			if dec.applies() {
				applyCapture(sale, payment, occurredAt, now)
			}
		} else {
			dec = decideFailure(sale, occurredAt)
			if dec.applies() {
				applyFailure(sale, payment, occurredAt, now)
			}
		}
		reason = dec.reason
		result = &Result{EventType: eventType, Outcome: dec.outcome, Sale: sale}

		if dec.applies() {
			if err := repo.Save(ctx, sale); err != nil {
				return err
			}
			if err := s.emitTerminal(ctx, tx, sale); err != nil {
				return err
			}
		}

		var note error
		if reason != "" {
			note = pkgerrors.New(pkgerrors.CodeStateConflict, reason)
		}
		return s.eventLog.Append(ctx, tx, newLogEntry(d, eventType, gatewayOrderID, dec.outcome, note))
	})
	if err != nil {
		return nil, s.fail(ctx, d, eventType, gatewayOrderID, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply payment webhook"))
	}
	return s.finish(ctx, d, eventType, reason, result, start)
}

func (s *Service) emitTerminal(ctx context.Context, tx *gorm.DB, sale *models.Sale) error {
	gatewayOrderID := ""
	if sale.GatewayOrderID != nil {
		gatewayOrderID = *sale.GatewayOrderID
	}
	paymentID := ""
	if sale.GatewayPaymentID != nil {
		paymentID = *sale.GatewayPaymentID
	}

	event := outbox.DomainEvent{
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
	}
	switch sale.PaymentStatus {
	case enums.PaymentStatusSuccess:
		event.EventType = enums.EventSaleCompleted
		event.Data = payloads.SaleCompletedEvent{
			SaleID:           sale.ID,
			OrderID:          sale.OrderID,
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: paymentID,
			Amount:           sale.Amount,
			Currency:         sale.Currency,
			CustomerEmail:    sale.CustomerEmail,
			ProductName:      sale.ProductName,
			DownloadLink:     sale.DownloadLink,
			CompletedAt:      *sale.PaymentCompletedAt,
		}
	case enums.PaymentStatusFailed:
		reason := ""
		if sale.FailureReason != nil {
			reason = *sale.FailureReason
		}
		event.EventType = enums.EventSaleFailed
		event.Data = payloads.SaleFailedEvent{
			SaleID:           sale.ID,
			OrderID:          sale.OrderID,
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: paymentID,
			CustomerEmail:    sale.CustomerEmail,
			FailureReason:    reason,
		}
	default:
		return nil
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *Service) finish(ctx context.Context, d Delivery, eventType, reason string, result *Result, start time.Time) (*Result, error) {
	if result.Outcome == enums.WebhookOutcomeIgnored {
		if err := s.eventLog.Append(ctx, nil, newLogEntry(d, eventType, "", result.Outcome, nil)); err != nil {
			return nil, s.fail(ctx, d, eventType, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record webhook"))
		}
	}

	logCtx := s.logg.WithField(ctx, "outcome", result.Outcome.String())
	switch result.Outcome {
	case enums.WebhookOutcomeApplied:
		s.logg.Info(logCtx, "payment webhook applied")
	case enums.WebhookOutcomeNotFound:
		s.logg.Warn(logCtx, "no sale for gateway order id")
	case enums.WebhookOutcomeRejected, enums.WebhookOutcomeStale:
		s.logg.Warn(s.logg.WithField(logCtx, "reason", reason), "payment webhook not applied")
	case enums.WebhookOutcomeUnchanged:
		s.logg.Info(logCtx, "payment webhook replay")
	}
	s.metrics.Observe(eventType, result.Outcome.String(), s.now().Sub(start))
	return result, nil
}

// fail records the failed delivery outside any transaction and returns err.
func (s *Service) fail(ctx context.Context, d Delivery, eventType, gatewayOrderID string, err error) error {
	s.logg.Error(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "payment webhook processing failed", err)
	entry := newLogEntry(d, eventType, gatewayOrderID, enums.WebhookOutcomeFailed, err)
	if logErr := s.eventLog.Append(ctx, nil, entry); logErr != nil {
		s.logg.Error(ctx, "failed to record webhook failure", logErr)
	}
	s.metrics.Observe(eventType, enums.WebhookOutcomeFailed.String(), 0)
	return err
}

func peekEventType(body []byte) string {
	var probe struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.Event
}

package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/pagination"
)

type stubHistory struct {
	events []models.PaymentWebhookEvent
}

func (h stubHistory) ListByGatewayOrderID(_ context.Context, gatewayOrderID string) ([]models.PaymentWebhookEvent, error) {
	var out []models.PaymentWebhookEvent
	for _, e := range h.events {
		if e.GatewayOrderID != nil && *e.GatewayOrderID == gatewayOrderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newAdmin(t *testing.T, history stubHistory) (AdminService, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewAdminService(NewRepository(client.DB()), history, client, outbox.NewService(outbox.NewRepository(client.DB()), nil), logger.Nop())
	require.NoError(t, err)
	return svc, client
}

func TestRefundCompletedSale(t *testing.T) {
	svc, client := newAdmin(t, stubHistory{})
	ctx := context.Background()

	sale := newSale("ORD1", "gw_abc")
	sale.PaymentStatus = enums.PaymentStatusSuccess
	sale.OrderStatus = enums.OrderStatusCompleted
	require.NoError(t, client.DB().Create(sale).Error)

	adminID := uuid.New()
	refunded, err := svc.Refund(ctx, sale.ID, outbox.ActorRef{AdminID: adminID, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRefunded, refunded.OrderStatus)
	assert.Equal(t, enums.PaymentStatusSuccess, refunded.PaymentStatus)
	require.NotNil(t, refunded.RefundedAt)

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventSaleRefunded, events[0].EventType)
	env, err := outbox.DecodeEnvelope(events[0].Payload)
	require.NoError(t, err)
	require.NotNil(t, env.Actor)
	assert.Equal(t, adminID, env.Actor.AdminID)

	_, err = svc.Refund(ctx, sale.ID, outbox.ActorRef{AdminID: adminID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestRefundRequiresCompletedSale(t *testing.T) {
	svc, client := newAdmin(t, stubHistory{})
	sale := newSale("ORD2", "gw_2")
	require.NoError(t, client.DB().Create(sale).Error)

	_, err := svc.Refund(context.Background(), sale.ID, outbox.ActorRef{AdminID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Refund(context.Background(), uuid.New(), outbox.ActorRef{AdminID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetIncludesWebhookHistory(t *testing.T) {
	gw := "gw_abc"
	other := "gw_other"
	history := stubHistory{events: []models.PaymentWebhookEvent{
		{EventID: "evt_1", EventType: "payment.captured", GatewayOrderID: &gw, SignatureValid: true, Outcome: enums.WebhookOutcomeApplied, ReceivedAt: time.Now()},
		{EventID: "evt_2", EventType: "payment.captured", GatewayOrderID: &other, SignatureValid: true, Outcome: enums.WebhookOutcomeNotFound, ReceivedAt: time.Now()},
	}}
	svc, client := newAdmin(t, history)

	sale := newSale("ORD1", gw)
	require.NoError(t, client.DB().Create(sale).Error)

	detail, err := svc.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD1", detail.OrderID)
	require.Len(t, detail.WebhookEvents, 1)
	assert.Equal(t, "evt_1", detail.WebhookEvents[0].EventID)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAdminListRejectsBadCursor(t *testing.T) {
	svc, client := newAdmin(t, stubHistory{})
	require.NoError(t, client.DB().Create(newSale("ORD1", "gw_1")).Error)

	page, err := svc.List(context.Background(), ListFilter{}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = svc.List(context.Background(), ListFilter{}, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

package webhooks

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/api/middleware"
	"github.com/patelpulse/pulse-backend/internal/payments"
	"github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/dbtest"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
)

const testSecret = "whsec_test"

const capturedBody = `{"entity":"event","event":"payment.captured","created_at":1777890000,` +
	`"payload":{"payment":{"entity":{"id":"pay_1","order_id":"gw_abc","amount":250000,"currency":"INR","method":"card"}}}}`

type staticSecret string

func (s staticSecret) WebhookSecret() string { return string(s) }

type memoryGuard struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
}

func newMemoryGuard() *memoryGuard { return &memoryGuard{seen: map[string]bool{}} }

func (g *memoryGuard) CheckAndMark(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen[id] {
		return true, nil
	}
	g.seen[id] = true
	return false, nil
}

func (g *memoryGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, id)
	g.released = append(g.released, id)
	return nil
}

type harness struct {
	client  *db.Client
	repo    *sales.Repository
	guard   *memoryGuard
	handler http.HandlerFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	repo := sales.NewRepository(client.DB())
	svc, err := payments.NewService(payments.ServiceParams{
		Sales:             repo,
		EventLog:          payments.NewEventLog(client.DB()),
		Outbox:            outbox.NewService(outbox.NewRepository(client.DB()), nil),
		TransactionRunner: client,
	})
	require.NoError(t, err)

	gw := "gw_abc"
	require.NoError(t, repo.Create(context.Background(), &models.Sale{
		OrderID:        "ORD1",
		GatewayOrderID: &gw,
		Amount:         decimal.RequireFromString("2500.00"),
		Currency:       "INR",
		PaymentStatus:  enums.PaymentStatusPending,
		OrderStatus:    enums.OrderStatusCreated,
		CustomerEmail:  "buyer@example.com",
		ProductName:    "Growth Playbook",
	}))

	guard := newMemoryGuard()
	return &harness{
		client:  client,
		repo:    repo,
		guard:   guard,
		handler: RazorpayWebhook(svc, staticSecret(testSecret), guard, nil),
	}
}

func (h *harness) post(body []byte, signature, eventID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(razorpay.SignatureHeader, signature)
	}
	if eventID != "" {
		req.Header.Set(razorpay.EventIDHeader, eventID)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) sale(t *testing.T) *models.Sale {
	t.Helper()
	sale, err := h.repo.FindByOrderID(context.Background(), "ORD1")
	require.NoError(t, err)
	require.NotNil(t, sale)
	return sale
}

func TestRazorpayWebhook_CapturedCompletesSale(t *testing.T) {
	h := newHarness(t)
	body := []byte(capturedBody)

	rec := h.post(body, razorpay.Sign(body, testSecret), "evt_1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	sale := h.sale(t)
	assert.Equal(t, enums.PaymentStatusSuccess, sale.PaymentStatus)
	assert.Equal(t, enums.OrderStatusCompleted, sale.OrderStatus)
	require.NotNil(t, sale.PaymentMethod)
	assert.Equal(t, "card", *sale.PaymentMethod)
}

func TestRazorpayWebhook_DuplicateDeliveryIsAcked(t *testing.T) {
	h := newHarness(t)
	body := []byte(capturedBody)
	sig := razorpay.Sign(body, testSecret)

	require.Equal(t, http.StatusOK, h.post(body, sig, "evt_1").Code)
	first := h.sale(t)

	rec := h.post(body, sig, "evt_1")
	require.Equal(t, http.StatusOK, rec.Code)
	second := h.sale(t)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.True(t, first.PaymentCompletedAt.Equal(*second.PaymentCompletedAt))

	var logged int64
	require.NoError(t, h.client.DB().Model(&models.PaymentWebhookEvent{}).Count(&logged).Error)
	assert.EqualValues(t, 1, logged, "duplicate should short-circuit before processing")
}

func TestRazorpayWebhook_TamperedBodyRejected(t *testing.T) {
	h := newHarness(t)
	original := []byte(capturedBody)
	sig := razorpay.Sign(original, testSecret)
	tampered := bytes.Replace(original, []byte("250000"), []byte("100"), 1)

	rec := h.post(tampered, sig, "evt_1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid signature"}`, rec.Body.String())

	sale := h.sale(t)
	assert.Equal(t, enums.PaymentStatusPending, sale.PaymentStatus)
	assert.Equal(t, enums.OrderStatusCreated, sale.OrderStatus)

	var logged models.PaymentWebhookEvent
	require.NoError(t, h.client.DB().First(&logged).Error)
	assert.False(t, logged.SignatureValid)
}

func TestRazorpayWebhook_MissingSignature(t *testing.T) {
	h := newHarness(t)

	rec := h.post([]byte(capturedBody), "", "evt_1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Missing signature"}`, rec.Body.String())
	assert.Equal(t, enums.PaymentStatusPending, h.sale(t).PaymentStatus)
}

func TestRazorpayWebhook_UnknownOrderIsAcked(t *testing.T) {
	h := newHarness(t)
	body := bytes.Replace([]byte(capturedBody), []byte("gw_abc"), []byte("gw_nope"), 1)

	rec := h.post(body, razorpay.Sign(body, testSecret), "evt_9")
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, h.client.DB().Model(&models.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, enums.PaymentStatusPending, h.sale(t).PaymentStatus)
}

func TestRazorpayWebhook_MalformedPayloadReturns500(t *testing.T) {
	h := newHarness(t)
	body := []byte(`{"event":`)

	rec := h.post(body, razorpay.Sign(body, testSecret), "evt_bad")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Webhook processing failed"}`, rec.Body.String())
	assert.Equal(t, []string{"evt_bad"}, h.guard.released)
}

type erroringService struct{ calls int }

func (s *erroringService) Process(context.Context, payments.Delivery) (*payments.Result, error) {
	s.calls++
	return nil, errors.New("db unavailable")
}

func (s *erroringService) RecordRejected(context.Context, payments.Delivery, error) {}

func TestRazorpayWebhook_RetryAfterFailureIsProcessed(t *testing.T) {
	svc := &erroringService{}
	guard := newMemoryGuard()
	handler := RazorpayWebhook(svc, staticSecret(testSecret), guard, nil)
	body := []byte(capturedBody)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
		req.Header.Set(razorpay.SignatureHeader, razorpay.Sign(body, testSecret))
		req.Header.Set(razorpay.EventIDHeader, "evt_1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	}
	assert.Equal(t, 2, svc.calls)
}

type panickingService struct{ calls int }

func (s *panickingService) Process(context.Context, payments.Delivery) (*payments.Result, error) {
	s.calls++
	if s.calls == 1 {
		panic("nil sale")
	}
	return &payments.Result{Outcome: enums.WebhookOutcomeApplied}, nil
}

func (s *panickingService) RecordRejected(context.Context, payments.Delivery, error) {}

func TestRazorpayWebhook_PanicReleasesGuard(t *testing.T) {
	svc := &panickingService{}
	guard := newMemoryGuard()
	handler := middleware.Recoverer(nil)(RazorpayWebhook(svc, staticSecret(testSecret), guard, nil))
	body := []byte(capturedBody)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
		req.Header.Set(razorpay.SignatureHeader, razorpay.Sign(body, testSecret))
		req.Header.Set(razorpay.EventIDHeader, "evt_panic")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusInternalServerError, send().Code)
	assert.Equal(t, []string{"evt_panic"}, guard.released)

	require.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, 2, svc.calls)
	assert.Equal(t, []string{"evt_panic"}, guard.released)
}

func TestRazorpayWebhook_NotConfigured(t *testing.T) {
	handler := RazorpayWebhook(nil, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

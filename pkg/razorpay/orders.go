package razorpay

import (
	"context"
	"errors"
	"fmt"

	"github.com/patelpulse/pulse-backend/pkg/config"
	rzp "github.com/razorpay/razorpay-go"
)

// OrderRequest describes a gateway order; Amount is in minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway order handed back to checkout.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// OrderCreator creates gateway orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the official Razorpay SDK.
type Client struct {
	keyID         string
	keySecret     string
	webhookSecret string
	orders        orderAPI
}

// NewClient builds a gateway client from config.
func NewClient(cfg config.RazorpayConfig) (*Client, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("razorpay webhook secret is required")
	}
	c := &Client{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		c.orders = rzp.NewClient(cfg.KeyID, cfg.KeySecret).Order
	}
	return c, nil
}

func (c *Client) KeyID() string         { return c.keyID }
func (c *Client) KeySecret() string     { return c.keySecret }
func (c *Client) WebhookSecret() string { return c.webhookSecret }

// CreateOrder registers an order with the gateway.
func (c *Client) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	if c.orders == nil {
		return nil, errors.New("razorpay api keys are not configured")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", req.Amount)
	}
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	body, err := c.orders.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create razorpay order: %w", err)
	}
	return parseOrder(body)
}

func parseOrder(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay order response missing id")
	}
	order := &Order{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)
	switch amt := body["amount"].(type) {
	case float64:
		order.Amount = int64(amt)
	case int64:
		order.Amount = amt
	case int:
		order.Amount = int64(amt)
	}
	return order, nil
}

package checkout

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type serviceLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// Gateway is the slice of the payment gateway checkout needs.
type Gateway interface {
	razorpay.OrderCreator
	KeyID() string
	KeySecret() string
}

// Service runs the browser side of a purchase: it opens a gateway order,
// records the Sale and reports its status. Payment outcomes arrive later
// through the webhook.
type Service interface {
	Start(ctx context.Context, input StartInput) (*StartResult, error)
	Verify(ctx context.Context, input VerifyInput) (*StatusDTO, error)
	Status(ctx context.Context, orderID string) (*StatusDTO, error)
}

// StartInput names exactly one of ProductID or ServiceID.
type StartInput struct {
	ProductID     *uuid.UUID
	ServiceID     *uuid.UUID
	CustomerEmail string
	CustomerPhone *string
}

// StartResult carries what the browser needs to open the gateway checkout.
type StartResult struct {
	OrderID        string          `json:"orderId"`
	GatewayOrderID string          `json:"razorpayOrderId"`
	KeyID          string          `json:"keyId"`
	Amount         decimal.Decimal `json:"amount"`
	AmountMinor    int64           `json:"amountInPaise"`
	Currency       string          `json:"currency"`
	ProductName    string          `json:"productName"`
	CustomerEmail  string          `json:"customerEmail"`
}

// VerifyInput is the gateway checkout callback forwarded by the browser.
type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// StatusDTO is the public view of a sale. DownloadLink is only set once the
// sale is completed.
type StatusDTO struct {
	OrderID            string              `json:"orderId"`
	PaymentStatus      enums.PaymentStatus `json:"paymentStatus"`
	OrderStatus        enums.OrderStatus   `json:"orderStatus"`
	ProductName        string              `json:"productName"`
	Amount             decimal.Decimal     `json:"amount"`
	Currency           string              `json:"currency"`
	PaymentCompletedAt *time.Time          `json:"paymentCompletedAt,omitempty"`
	DownloadLink       *string             `json:"downloadLink,omitempty"`
}

func NewStatusDTO(sale *models.Sale) StatusDTO {
	dto := StatusDTO{
		OrderID:            sale.OrderID,
		PaymentStatus:      sale.PaymentStatus,
		OrderStatus:        sale.OrderStatus,
		ProductName:        sale.ProductName,
		Amount:             sale.Amount,
		Currency:           sale.Currency,
		PaymentCompletedAt: sale.PaymentCompletedAt,
	}
	if sale.OrderStatus == enums.OrderStatusCompleted {
		dto.DownloadLink = sale.DownloadLink
	}
	return dto
}

type ServiceParams struct {
	Sales      *sales.Repository
	Products   productLoader
	Services   serviceLoader
	Gateway    Gateway
	DB         db.TxRunner
	Logger     *logger.Logger
	Currency   string
	Clock      func() time.Time
	NewOrderID func(now time.Time) string
}

type service struct {
	sales      *sales.Repository
	products   productLoader
	services   serviceLoader
	gateway    Gateway
	db         db.TxRunner
	logg       *logger.Logger
	currency   string
	now        func() time.Time
	newOrderID func(now time.Time) string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Services == nil {
		return nil, fmt.Errorf("service repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{
		sales:      params.Sales,
		products:   params.Products,
		services:   params.Services,
		gateway:    params.Gateway,
		db:         params.DB,
		logg:       params.Logger,
		currency:   params.Currency,
		now:        params.Clock,
		newOrderID: params.NewOrderID,
	}
	if s.currency == "" {
		s.currency = "INR"
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newOrderID == nil {
		s.newOrderID = NewOrderID
	}
	return s, nil
}

// NewOrderID returns a merchant order id such as PPV-20260301-1A2B3C4D.
func NewOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PPV-%s-%s", now.UTC().Format("20060102"), suffix)
}

// item is the priced thing being bought.
type item struct {
	productID    *uuid.UUID
	serviceID    *uuid.UUID
	name         string
	price        decimal.Decimal
	currency     string
	downloadLink *string
}

func (s *service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customerEmail must be a valid email")
	}
	if (input.ProductID == nil) == (input.ServiceID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of productId or serviceId is required")
	}

	it, err := s.resolveItem(ctx, input)
	if err != nil {
		return nil, err
	}
	minor := it.price.Shift(2)
	if !minor.IsInteger() || !minor.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item price cannot be charged")
	}

	now := s.now()
	orderID := s.newOrderID(now)
	gwOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   minor.IntPart(),
		Currency: it.currency,
		Receipt:  orderID,
		Notes:    map[string]string{"order_id": orderID, "item": it.name},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
	}

	gatewayOrderID := gwOrder.ID
	sale := &models.Sale{
		OrderID:        orderID,
		GatewayOrderID: &gatewayOrderID,
		Amount:         it.price,
		Currency:       it.currency,
		PaymentStatus:  enums.PaymentStatusPending,
		OrderStatus:    enums.OrderStatusCreated,
		CustomerEmail:  email,
		CustomerPhone:  trimmed(input.CustomerPhone),
		ProductID:      it.productID,
		ServiceID:      it.serviceID,
		ProductName:    it.name,
		DownloadLink:   it.downloadLink,
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sale")
	}

	logCtx := s.logg.WithFields(s.logg.WithGatewayOrderID(ctx, gatewayOrderID), map[string]any{
		"order_id": orderID,
		"amount":   sale.Amount.StringFixed(2),
	})
	s.logg.Info(logCtx, "checkout started")

	return &StartResult{
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		KeyID:          s.gateway.KeyID(),
		Amount:         sale.Amount,
		AmountMinor:    minor.IntPart(),
		Currency:       sale.Currency,
		ProductName:    sale.ProductName,
		CustomerEmail:  email,
	}, nil
}

func (s *service) resolveItem(ctx context.Context, input StartInput) (*item, error) {
	if input.ProductID != nil {
		p, err := s.products.FindByID(ctx, *input.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return &item{
			productID:    &p.ID,
			name:         p.Title,
			price:        p.Price,
			currency:     s.itemCurrency(p.Currency),
			downloadLink: p.DownloadLink,
		}, nil
	}

	svc, err := s.services.FindByID(ctx, *input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	if svc.Price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "service is not sold online")
	}
	return &item{
		serviceID: &svc.ID,
		name:      svc.Title,
		price:     *svc.Price,
		currency:  s.itemCurrency(svc.Currency),
	}, nil
}

func (s *service) itemCurrency(value string) string {
	if value == "" {
		return s.currency
	}
	return value
}

// Verify checks the checkout callback signature and moves a created sale to
// processing. Payment status stays pending until the webhook confirms it.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*StatusDTO, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "razorpayOrderId, razorpayPaymentId and razorpaySignature are required")
	}
	if !razorpay.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, s.gateway.KeySecret(), input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "invalid payment signature")
	}

	var sale *models.Sale
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		var err error
		sale, err = repo.FindByGatewayOrderIDForUpdate(ctx, input.GatewayOrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if sale == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if sale.OrderStatus != enums.OrderStatusCreated {
			return nil
		}
		sale.OrderStatus = enums.OrderStatusProcessing
		if sale.GatewayPaymentID == nil {
			paymentID := input.GatewayPaymentID
			sale.GatewayPaymentID = &paymentID
		}
		if err := repo.Save(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithGatewayOrderID(ctx, input.GatewayOrderID), map[string]any{
		"order_id":     sale.OrderID,
		"order_status": sale.OrderStatus,
	})
	s.logg.Info(logCtx, "checkout verified")

	dto := NewStatusDTO(sale)
	return &dto, nil
}

func (s *service) Status(ctx context.Context, orderID string) (*StatusDTO, error) {
	sale, err := s.sales.FindByOrderID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := NewStatusDTO(sale)
	return &dto, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

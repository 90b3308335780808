package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	checkoutsvc "github.com/patelpulse/pulse-backend/internal/checkout"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// StartCheckout creates the gateway order and the pending sale.
func StartCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		var payload startCheckoutRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := checkoutsvc.StartInput{
			ProductID:     payload.ProductID,
			ServiceID:     payload.ServiceID,
			CustomerEmail: strings.TrimSpace(payload.CustomerEmail),
		}
		if payload.CustomerPhone != nil {
			phone := validators.SanitizeString(*payload.CustomerPhone, 20)
			if phone != "" {
				input.CustomerPhone = &phone
			}
		}
		result, err := svc.Start(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type startCheckoutRequest struct {
	ProductID     *uuid.UUID `json:"productId,omitempty" validate:"required_without=ServiceID,excluded_with=ServiceID"`
	ServiceID     *uuid.UUID `json:"serviceId,omitempty" validate:"required_without=ProductID"`
	CustomerEmail string     `json:"customerEmail" validate:"required,email,max=254"`
	CustomerPhone *string    `json:"customerPhone,omitempty" validate:"omitempty,max=20"`
}

// VerifyCheckout checks the browser handoff signature and marks the sale processing.
func VerifyCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		var payload verifyCheckoutRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Verify(r.Context(), checkoutsvc.VerifyInput{
			GatewayOrderID:   strings.TrimSpace(payload.RazorpayOrderID),
			GatewayPaymentID: strings.TrimSpace(payload.RazorpayPaymentID),
			Signature:        strings.TrimSpace(payload.RazorpaySignature),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

type verifyCheckoutRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" validate:"required,max=64"`
	RazorpayPaymentID string `json:"razorpayPaymentId" validate:"required,max=64"`
	RazorpaySignature string `json:"razorpaySignature" validate:"required,max=128"`
}

// CheckoutStatus reports the public state of a sale by merchant order id.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout")
			return
		}
		orderID, err := validators.SlugParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Status(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

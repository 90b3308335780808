package controllers

import (
	"net/http"
	"strings"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	salessvc "github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/enums"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// AdminListSales lists sales filtered by ?paymentStatus=, ?orderStatus= and ?email=.
func AdminListSales(svc salessvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, err := parseSaleFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseSaleFilter(r *http.Request) (salessvc.ListFilter, error) {
	var filter salessvc.ListFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("paymentStatus")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentStatus")
		}
		filter.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(q.Get("orderStatus")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid orderStatus")
		}
		filter.OrderStatus = &status
	}
	filter.CustomerEmail = strings.ToLower(validators.SanitizeString(q.Get("email"), 254))
	return filter, nil
}

// AdminGetSale returns a sale with its webhook delivery history.
func AdminGetSale(svc salessvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales")
			return
		}
		id, err := validators.ParseUUIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// AdminRefundSale marks a completed sale refunded.
func AdminRefundSale(svc salessvc.AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "sales")
			return
		}
		actor, err := actorRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Refund(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

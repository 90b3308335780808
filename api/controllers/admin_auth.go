package controllers

import (
	"net/http"

	"github.com/patelpulse/pulse-backend/api/responses"
	"github.com/patelpulse/pulse-backend/api/validators"
	authsvc "github.com/patelpulse/pulse-backend/internal/auth"
	"github.com/patelpulse/pulse-backend/pkg/logger"
)

// AdminLogin exchanges back-office credentials for a bearer token.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

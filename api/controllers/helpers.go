package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/patelpulse/pulse-backend/api/middleware"
	"github.com/patelpulse/pulse-backend/api/responses"
	pkgerrors "github.com/patelpulse/pulse-backend/pkg/errors"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
)

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// actorRef converts the verified request actor into the outbox actor reference.
func actorRef(r *http.Request) (outbox.ActorRef, error) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.AdminID == "" {
		return outbox.ActorRef{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin context missing")
	}
	id, err := uuid.Parse(actor.AdminID)
	if err != nil {
		return outbox.ActorRef{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin id")
	}
	return outbox.ActorRef{AdminID: id, Role: string(actor.Role)}, nil
}

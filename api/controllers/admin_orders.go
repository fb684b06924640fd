package controllers

import (
	"net/http"

	"github.com/tuanphm/teehouse-backend/api/responses"
	"github.com/tuanphm/teehouse-backend/api/validators"
	internalorders "github.com/tuanphm/teehouse-backend/internal/orders"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
)

type advanceFulfillmentRequest struct {
	Note *string `json:"note,omitempty"`
}

// AdminAdvanceFulfillment moves an order one step along the fulfillment chain.
func AdminAdvanceFulfillment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceFulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AdvanceFulfillment(r.Context(), internalorders.AdvanceFulfillmentInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

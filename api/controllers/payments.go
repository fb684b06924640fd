package controllers

import (
	"net/http"
	"strings"

	"github.com/tuanphm/teehouse-backend/api/responses"
	"github.com/tuanphm/teehouse-backend/api/validators"
	"github.com/tuanphm/teehouse-backend/internal/reconcile"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
)

type verifyCardSessionRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	OrderNumber string `json:"order_number,omitempty"`
}

// DomesticGatewayReturn handles the signed-query redirect from the domestic
// terminal. It is unauthenticated: the signature is the credential.
func DomesticGatewayReturn(svc *reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		result, err := svc.HandleDomesticReturn(r.Context(), r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VerifyCardSession resolves a hosted checkout session server-side after the
// shopper returns from the card gateway.
func VerifyCardSession(svc *reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		var payload verifyCardSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyCardSession(r.Context(), strings.TrimSpace(payload.SessionID), strings.TrimSpace(payload.OrderNumber))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

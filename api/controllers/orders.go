package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanphm/teehouse-backend/api/middleware"
	"github.com/tuanphm/teehouse-backend/api/responses"
	"github.com/tuanphm/teehouse-backend/api/validators"
	internalorders "github.com/tuanphm/teehouse-backend/internal/orders"
	"github.com/tuanphm/teehouse-backend/internal/payments"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
	"github.com/tuanphm/teehouse-backend/pkg/pagination"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

type createOrderLineRequest struct {
	ProductID    string              `json:"product_id" validate:"required,uuid4"`
	Qty          int                 `json:"qty" validate:"required,min=1"`
	Size         string              `json:"size" validate:"required"`
	Color        string              `json:"color,omitempty"`
	CustomDesign *types.CustomDesign `json:"custom_design,omitempty"`
}

type createOrderRequest struct {
	Lines           []createOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	ShippingAddress types.ShippingAddress    `json:"shipping_address" validate:"required"`
	PaymentMethod   string                   `json:"payment_method" validate:"required"`
	Notes           *string                  `json:"notes,omitempty"`
}

type createOrderResponse struct {
	Order   *internalorders.OrderView `json:"order"`
	Payment *payments.RedirectTarget  `json:"payment,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// CreateOrder snapshots the cart into an order and, for gateway methods,
// opens the payment session in the same round trip. A session failure does
// not undo the order; the client retries through retry-payment.
func CreateOrder(svc internalorders.Service, paySvc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		lines := make([]internalorders.CreateOrderLine, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			lines = append(lines, internalorders.CreateOrderLine{
				ProductID:    productID,
				Qty:          line.Qty,
				Size:         line.Size,
				Color:        line.Color,
				CustomDesign: line.CustomDesign,
			})
		}

		view, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			UserID:        actorID,
			Lines:         lines,
			Address:       payload.ShippingAddress,
			PaymentMethod: method,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := createOrderResponse{Order: view}
		if method.RequiresGatewaySession() && paySvc != nil {
			target, sessErr := paySvc.StartSession(r.Context(), view.ID, actorID, role)
			if sessErr == nil {
				out.Payment = target
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// GetOrder returns the order detail looked up by its public order number.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderNumber := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
		if orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		view, err := svc.GetByNumber(r.Context(), actorID, role, orderNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListOrders returns the caller's orders as a cursor page.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := svc.ListMine(r.Context(), actorID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CancelOrder cancels an order the caller owns (or any order for admins).
func CancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.CancelOrderInput{
			OrderID:     orderID,
			ActorUserID: actorID,
			ActorRole:   role,
			Reason:      strings.TrimSpace(payload.Reason),
		}
		if err := svc.Cancel(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// RetryPayment opens a fresh gateway session for an awaiting-payment order.
func RetryPayment(paySvc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if paySvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := paySvc.RetryPayment(r.Context(), orderID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, target)
	}
}

func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	actorID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "role context missing")
	}
	return actorID, role, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

package orders

import (
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

// legalTransitions is the single authority over order status changes. No
// caller sets order_status directly; every mutation funnels through
// EnsureTransition first.
var legalTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelled,
		enums.OrderStatusPending, // design re-upload keeps the order pending
	},
	enums.OrderStatusAwaitingPayment: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusCancelled,
		enums.OrderStatusPending, // design re-upload forces re-confirmation
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelled,
		enums.OrderStatusPending, // design re-upload forces re-confirmation
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
	},
}

// EnsureTransition rejects any status change not present in the transition
// table. Terminal states have no outgoing edges.
func EnsureTransition(from, to enums.OrderStatus) error {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}

// fulfillmentSuccessor returns the next step in the fulfillment chain.
func fulfillmentSuccessor(current enums.OrderStatus) (enums.OrderStatus, error) {
	switch current {
	case enums.OrderStatusPending, enums.OrderStatusConfirmed:
		return enums.OrderStatusProcessing, nil
	case enums.OrderStatusProcessing:
		return enums.OrderStatusShipped, nil
	case enums.OrderStatusShipped:
		return enums.OrderStatusDelivered, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a fulfillable status").
			WithDetails(map[string]any{"from": current.String()})
	}
}

// designMutable reports whether the custom design may still be replaced.
func designMutable(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPending, enums.OrderStatusAwaitingPayment, enums.OrderStatusConfirmed:
		return true
	default:
		return false
	}
}

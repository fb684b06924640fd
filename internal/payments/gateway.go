package payments

import (
	"context"
	"net/url"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

// RedirectTarget is where the client goes to complete payment.
type RedirectTarget struct {
	URL        string `json:"url"`
	SessionRef string `json:"session_ref,omitempty"`
}

// VerifiedOutcome is the narrow internal result of callback verification.
// Nothing past the adapter layer sees raw gateway wire formats.
type VerifiedOutcome struct {
	OrderReference string
	Succeeded      bool
	// Pending marks "not yet paid": the gateway neither confirmed nor
	// explicitly failed the payment, so no transition may be applied.
	Pending        bool
	TransactionRef string
	SessionRef     string
	FailureReason  string
	// Amount is the gateway-reported total in VND, zero when the provider
	// does not echo it back.
	Amount int64
	Raw    []byte
}

// Gateway is the uniform capability every payment provider adapter exposes.
type Gateway interface {
	Method() enums.PaymentMethod
	CreateSession(ctx context.Context, order *models.Order) (*RedirectTarget, error)
	VerifyCallback(ctx context.Context, params url.Values) (*VerifiedOutcome, error)
}

// Registry dispatches by payment method. Adding a provider means adding one
// adapter, not branching logic through the state machine.
type Registry struct {
	gateways map[enums.PaymentMethod]Gateway
}

// NewRegistry builds a registry from the provided adapters.
func NewRegistry(gateways ...Gateway) *Registry {
	reg := &Registry{gateways: make(map[enums.PaymentMethod]Gateway, len(gateways))}
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		reg.gateways[gw.Method()] = gw
	}
	return reg
}

// ForMethod resolves the adapter for a payment method.
func (r *Registry) ForMethod(method enums.PaymentMethod) (Gateway, error) {
	gw, ok := r.gateways[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no gateway for payment method").
			WithDetails(map[string]any{"payment_method": method})
	}
	return gw, nil
}

package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/tuanphm/teehouse-backend/pkg/config"
	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

// cardGateway wraps the hosted checkout-session provider for international
// cards. Client redirects back from the host are not self-verifying, so
// verification is always a server-to-server session lookup.
type cardGateway struct {
	cfg config.StripeConfig
}

// NewCardGateway configures the card adapter and initializes the SDK key.
func NewCardGateway(cfg config.StripeConfig) (Gateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("stripe api key is required")
	}
	if cfg.Environment() == "test" && !strings.HasPrefix(apiKey, "sk_test") {
		return nil, fmt.Errorf("stripe test environment requires a test secret key")
	}
	if cfg.Environment() == "live" && !strings.HasPrefix(apiKey, "sk_live") {
		return nil, fmt.Errorf("stripe live environment requires a live secret key")
	}
	stripe.Key = apiKey
	return &cardGateway{cfg: cfg}, nil
}

func (g *cardGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodCardGateway
}

func (g *cardGateway) CreateSession(ctx context.Context, order *models.Order) (*RedirectTarget, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Lines))
	for _, line := range order.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Qty)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(line.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.ProductName),
				},
			},
		})
	}
	if order.ShippingFee > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(order.ShippingFee),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Shipping"),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(order.OrderNumber),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		Metadata: map[string]string{
			"order_number": order.OrderNumber,
			"order_id":     order.ID.String(),
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create checkout session")
	}

	return &RedirectTarget{URL: sess.URL, SessionRef: sess.ID}, nil
}

// VerifyCallback looks the session up by id rather than trusting the
// client's query parameters.
func (g *cardGateway) VerifyCallback(ctx context.Context, params url.Values) (*VerifiedOutcome, error) {
	sessionID := strings.TrimSpace(params.Get("sessionId"))
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	lookup := &stripe.CheckoutSessionParams{}
	lookup.Context = ctx
	sess, err := session.Get(sessionID, lookup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "look up checkout session")
	}

	raw, _ := json.Marshal(map[string]any{
		"session_id":     sess.ID,
		"payment_status": sess.PaymentStatus,
		"status":         sess.Status,
	})

	outcome := &VerifiedOutcome{
		OrderReference: sess.ClientReferenceID,
		Succeeded:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		SessionRef:     sess.ID,
		Amount:         sess.AmountTotal,
		Raw:            raw,
	}
	if sess.PaymentIntent != nil {
		outcome.TransactionRef = sess.PaymentIntent.ID
	}
	// An open session means the shopper has not paid yet; that is "not yet
	// paid", never "payment failed".
	if !outcome.Succeeded {
		if sess.Status == stripe.CheckoutSessionStatusExpired {
			outcome.FailureReason = "checkout session expired"
		} else {
			outcome.Pending = true
		}
	}
	return outcome, nil
}

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/internal/orders"
	"github.com/tuanphm/teehouse-backend/internal/payments"
	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
)

// Result is what the return-page controller renders: the order's state after
// the verified outcome was applied (or deliberately not applied).
type Result struct {
	OrderNumber   string              `json:"order_number"`
	OrderStatus   enums.OrderStatus   `json:"order_status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	// Pending is true while the gateway session is open but unpaid.
	Pending bool `json:"pending"`
}

// resultApplier is the slice of the order service reconciliation needs.
type resultApplier interface {
	ApplyPaymentResult(ctx context.Context, input orders.PaymentResultInput) error
}

// orderLoader resolves the gateway's order reference to an aggregate.
type orderLoader interface {
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
}

// Service turns raw gateway callbacks into verified, applied payment results.
// Every mutation goes through the order service; this layer only verifies,
// resolves, and cross-checks.
type Service struct {
	registry *payments.Registry
	loader   orderLoader
	applier  resultApplier
	timeout  time.Duration
	logg     *logger.Logger
}

// NewService wires the reconciliation service.
func NewService(registry *payments.Registry, loader orderLoader, applier resultApplier, timeout time.Duration, logg *logger.Logger) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	if loader == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if applier == nil {
		return nil, fmt.Errorf("result applier required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{registry: registry, loader: loader, applier: applier, timeout: timeout, logg: logg}, nil
}

// HandleDomesticReturn verifies a signed-query redirect from the domestic
// terminal and applies the outcome. Verification is pure computation over the
// query string, so a forged or replayed redirect fails before any lookup.
func (s *Service) HandleDomesticReturn(ctx context.Context, params url.Values) (*Result, error) {
	gateway, err := s.registry.ForMethod(enums.PaymentMethodDomesticGateway)
	if err != nil {
		return nil, err
	}
	outcome, err := gateway.VerifyCallback(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, enums.PaymentMethodDomesticGateway, outcome)
}

// VerifyCardSession resolves a hosted checkout session server-side and applies
// the outcome. The client only supplies identifiers; the session state comes
// from the provider directly.
func (s *Service) VerifyCardSession(ctx context.Context, sessionID, orderNumber string) (*Result, error) {
	gateway, err := s.registry.ForMethod(enums.PaymentMethodCardGateway)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("sessionId", sessionID)
	outcome, err := gateway.VerifyCallback(callCtx, params)
	if err != nil {
		return nil, err
	}
	if orderNumber != "" && outcome.OrderReference != orderNumber {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "session does not reference this order").
			WithDetails(map[string]any{"order_number": orderNumber})
	}
	return s.apply(ctx, enums.PaymentMethodCardGateway, outcome)
}

func (s *Service) apply(ctx context.Context, method enums.PaymentMethod, outcome *payments.VerifiedOutcome) (*Result, error) {
	order, err := s.loader.FindByOrderNumber(ctx, outcome.OrderReference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference").
				WithDetails(map[string]any{"order_reference": outcome.OrderReference})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order reference")
	}
	if order.PaymentMethod != method {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "callback provider does not match order payment method")
	}
	if outcome.Amount > 0 && outcome.Amount != order.TotalAmount {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "gateway amount does not match order total").
			WithDetails(map[string]any{"expected": order.TotalAmount, "got": outcome.Amount})
	}

	if outcome.Pending {
		// The shopper has not completed payment; nothing to apply yet.
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Info(logCtx, "gateway session still open, no result applied")
		}
		return &Result{
			OrderNumber:   order.OrderNumber,
			OrderStatus:   order.OrderStatus,
			PaymentStatus: order.PaymentStatus,
			Pending:       true,
		}, nil
	}

	input := orders.PaymentResultInput{
		OrderID:        order.ID,
		Succeeded:      outcome.Succeeded,
		Provider:       method.String(),
		TransactionRef: outcome.TransactionRef,
		SessionRef:     outcome.SessionRef,
		RawPayload:     outcome.Raw,
		FailureReason:  outcome.FailureReason,
	}
	if err := s.applier.ApplyPaymentResult(ctx, input); err != nil {
		return nil, err
	}

	// Reload for the post-application state; the applier mutated the row.
	refreshed, err := s.loader.FindByOrderNumber(ctx, order.OrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return &Result{
		OrderNumber:   refreshed.OrderNumber,
		OrderStatus:   refreshed.OrderStatus,
		PaymentStatus: refreshed.PaymentStatus,
	}, nil
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/internal/orders"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
)

// Service creates and recreates gateway payment sessions. Session creation
// is deliberately decoupled from order creation: a gateway outage never
// blocks order durability, it only delays the redirect.
type Service interface {
	StartSession(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*RedirectTarget, error)
	RetryPayment(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*RedirectTarget, error)
}

type service struct {
	repo     orders.Repository
	registry *Registry
	timeout  time.Duration
	logg     *logger.Logger
}

// NewService wires the session service.
func NewService(repo orders.Repository, registry *Registry, timeout time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if registry == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &service{repo: repo, registry: registry, timeout: timeout, logg: logg}, nil
}

func (s *service) StartSession(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*RedirectTarget, error) {
	return s.createSession(ctx, orderID, actorID, actorRole)
}

// RetryPayment abandons any previous session and opens a fresh one. The
// inventory reservation taken at order creation still holds, so nothing is
// re-reserved here.
func (s *service) RetryPayment(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*RedirectTarget, error) {
	return s.createSession(ctx, orderID, actorID, actorRole)
}

func (s *service) createSession(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*RedirectTarget, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if actorRole != enums.RoleAdmin && order.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	if !order.PaymentMethod.RequiresGatewaySession() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment method does not use a gateway session")
	}
	if order.OrderStatus != enums.OrderStatusAwaitingPayment {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment").
			WithDetails(map[string]any{"order_status": order.OrderStatus.String()})
	}

	gateway, err := s.registry.ForMethod(order.PaymentMethod)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target, err := gateway.CreateSession(callCtx, order)
	if err != nil {
		// The reservation predates this call and survives it; the order
		// stays retryable in awaiting_payment.
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Warn(logCtx, "gateway session creation failed")
		}
		return nil, err
	}
	return target, nil
}

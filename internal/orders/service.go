package orders

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/internal/catalog"
	"github.com/tuanphm/teehouse-backend/internal/inventory"
	"github.com/tuanphm/teehouse-backend/internal/pricing"
	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
	"github.com/tuanphm/teehouse-backend/pkg/outbox"
	"github.com/tuanphm/teehouse-backend/pkg/outbox/payloads"
	"github.com/tuanphm/teehouse-backend/pkg/pagination"
)

const designUpdateNote = "design updated, pending re-confirmation"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	calc    *pricing.Calculator
	ledger  inventory.Ledger
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
}

// NewService builds the order lifecycle service with its dependencies.
func NewService(
	repo Repository,
	cat catalog.Repository,
	calc *pricing.Calculator,
	ledger inventory.Ledger,
	tx txRunner,
	ob outboxPublisher,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if calc == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		catalog: cat,
		calc:    calc,
		ledger:  ledger,
		tx:      tx,
		outbox:  ob,
		logg:    logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if missing := input.Address.Validate(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	for _, line := range input.Lines {
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if strings.TrimSpace(line.Size) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line size is required").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if line.CustomDesign != nil {
			if err := line.CustomDesign.Validate(); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid custom design")
			}
		}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cat := s.catalog.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Lines))
		for _, line := range input.Lines {
			ids = append(ids, line.ProductID)
		}
		products, err := cat.FindActiveByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}

		quoteLines := make([]pricing.QuoteLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			product, ok := products[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "product not available").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			quoteLines = append(quoteLines, pricing.QuoteLine{
				ProductID: line.ProductID,
				Qty:       line.Qty,
				UnitPrice: product.UnitPrice,
			})
		}

		quote, err := s.calc.Quote(quoteLines, input.Address, 0)
		if err != nil {
			return err
		}

		status := enums.OrderStatusAwaitingPayment
		if input.PaymentMethod == enums.PaymentMethodCashOnDelivery {
			status = enums.OrderStatusPending
		}

		order := &models.Order{
			OrderNumber:     newOrderNumber(time.Now().UTC()),
			UserID:          input.UserID,
			Subtotal:        quote.Subtotal,
			ShippingFee:     quote.ShippingFee,
			Discount:        quote.Discount,
			TotalAmount:     quote.Total,
			ShippingAddress: input.Address,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   enums.PaymentStatusUnpaid,
			OrderStatus:     status,
			Notes:           input.Notes,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		lines := make([]models.OrderLine, 0, len(input.Lines))
		reserveItems := make([]inventory.ReserveItem, 0, len(input.Lines))
		for i, line := range input.Lines {
			product := products[line.ProductID]
			lines = append(lines, models.OrderLine{
				OrderID:      order.ID,
				LineIndex:    i,
				ProductID:    line.ProductID,
				ProductName:  product.Name,
				ProductImage: product.ImageURL,
				Size:         line.Size,
				Color:        line.Color,
				Qty:          line.Qty,
				UnitPrice:    product.UnitPrice,
				CustomDesign: line.CustomDesign,
			})
			reserveItems = append(reserveItems, inventory.ReserveItem{
				ProductID: line.ProductID,
				Size:      line.Size,
				Qty:       line.Qty,
			})
		}
		if err := repo.CreateOrderLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order lines")
		}

		// All-or-nothing: any failed hold aborts the transaction, undoing
		// the holds already taken for earlier lines.
		if err := s.ledger.Reserve(ctx, tx, order.ID, reserveItems); err != nil {
			return err
		}

		if err := repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
			OrderID: order.ID,
			Status:  status,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.RoleCustomer)},
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				UserID:        order.UserID,
				PaymentMethod: string(order.PaymentMethod),
				TotalAmount:   order.TotalAmount,
				LineCount:     len(lines),
				CreatedAt:     order.CreatedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order created event")
		}

		created, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := NewOrderView(created)
	return &view, nil
}

func (s *service) GetByNumber(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderNumber string) (*OrderView, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if actorRole != enums.RoleAdmin && order.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	view := NewOrderView(order)
	return &view, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) Cancel(ctx context.Context, input CancelOrderInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if input.ActorRole != enums.RoleAdmin && order.UserID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
		if err := EnsureTransition(order.OrderStatus, enums.OrderStatusCancelled); err != nil {
			return err
		}

		refundRequired := order.PaymentStatus == enums.PaymentStatusPaid

		note := input.Reason
		if err := s.applyStatus(ctx, repo, order, enums.OrderStatusCancelled, &note, nil); err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, tx, order.ID); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)},
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				FromStatus:     string(order.OrderStatus),
				ToStatus:       string(enums.OrderStatusCancelled),
				Note:           input.Reason,
				RefundRequired: refundRequired,
				OccurredAt:     time.Now().UTC(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue cancellation event")
		}
		return nil
	})
}

func (s *service) ReplaceDesign(ctx context.Context, input ReplaceDesignInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.LineIndex < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line index must not be negative")
	}
	if err := input.Design.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid custom design")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if input.ActorRole != enums.RoleAdmin && order.UserID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
		if !designMutable(order.OrderStatus) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "design can no longer be changed").
				WithDetails(map[string]any{"from": order.OrderStatus.String(), "to": enums.OrderStatusPending.String()})
		}

		rows, err := repo.UpdateLineDesign(ctx, order.ID, input.LineIndex, &input.Design)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line design")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found").
				WithDetails(map[string]any{"line_index": input.LineIndex})
		}

		// A design change always re-enters pending with exactly one new
		// history entry, even when the order is already pending.
		note := designUpdateNote
		if err := s.applyStatus(ctx, repo, order, enums.OrderStatusPending, &note, nil); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDesignUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)},
			Version:       1,
			Data: payloads.DesignUpdatedEvent{
				OrderID:    order.ID,
				LineIndex:  input.LineIndex,
				ImageRef:   input.Design.ImageRef,
				PreviewRef: input.Design.PreviewRef,
				UpdatedAt:  time.Now().UTC(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue design updated event")
		}

		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := NewOrderView(updated)
	return &view, nil
}

func (s *service) AdvanceFulfillment(ctx context.Context, input AdvanceFulfillmentInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		next, err := fulfillmentSuccessor(order.OrderStatus)
		if err != nil {
			return err
		}
		if err := EnsureTransition(order.OrderStatus, next); err != nil {
			return err
		}

		extra := map[string]any{}
		// Cash is collected at the door, so delivery settles payment.
		if next == enums.OrderStatusDelivered &&
			order.PaymentMethod == enums.PaymentMethodCashOnDelivery &&
			order.PaymentStatus == enums.PaymentStatusUnpaid {
			extra["payment_status"] = enums.PaymentStatusPaid
		}

		if err := s.applyStatus(ctx, repo, order, next, input.Note, extra); err != nil {
			return err
		}

		// Delivery consumes the stock, so any reservation still held resolves
		// to a commit here. Prepaid orders committed at confirmation and this
		// replays as a no-op.
		if next == enums.OrderStatusDelivered {
			if err := s.ledger.Commit(ctx, tx, order.ID); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.RoleAdmin)},
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				FromStatus:  string(order.OrderStatus),
				ToStatus:    string(next),
				OccurredAt:  time.Now().UTC(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue fulfillment event")
		}

		updated, err = repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := NewOrderView(updated)
	return &view, nil
}

func (s *service) ApplyPaymentResult(ctx context.Context, input PaymentResultInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		if input.Succeeded {
			return s.applyPaymentSuccess(ctx, tx, repo, order, input)
		}
		return s.applyPaymentFailure(ctx, tx, repo, order, input)
	})
}

func (s *service) applyPaymentSuccess(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, input PaymentResultInput) error {
	// Replayed callbacks for an order that already settled are a no-op,
	// not an error.
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil
	}

	if order.OrderStatus != enums.OrderStatusAwaitingPayment {
		// The order lost the race to a cancellation; the money must travel
		// back out of band. Record the transaction for reconciliation audit.
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(logCtx, "payment confirmed for order no longer awaiting payment")
		return s.recordGatewayTransaction(ctx, repo, order, input)
	}

	if err := EnsureTransition(order.OrderStatus, enums.OrderStatusConfirmed); err != nil {
		return err
	}
	if err := s.applyStatus(ctx, repo, order, enums.OrderStatusConfirmed, nil, map[string]any{
		"payment_status": enums.PaymentStatusPaid,
	}); err != nil {
		return err
	}
	if err := s.ledger.Commit(ctx, tx, order.ID); err != nil {
		return err
	}
	if err := s.recordGatewayTransaction(ctx, repo, order, input); err != nil {
		return err
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventPaymentConfirmed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.PaymentConfirmedEvent{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Provider:       input.Provider,
			TransactionRef: input.TransactionRef,
			Amount:         order.TotalAmount,
			ConfirmedAt:    time.Now().UTC(),
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue payment confirmed event")
	}
	return nil
}

func (s *service) applyPaymentFailure(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, input PaymentResultInput) error {
	// Failure reports only matter while the order still waits for payment.
	if order.OrderStatus != enums.OrderStatusAwaitingPayment {
		return nil
	}

	if err := EnsureTransition(order.OrderStatus, enums.OrderStatusCancelled); err != nil {
		return err
	}
	note := "payment failed"
	if input.FailureReason != "" {
		note = fmt.Sprintf("payment failed: %s", input.FailureReason)
	}
	if err := s.applyStatus(ctx, repo, order, enums.OrderStatusCancelled, &note, nil); err != nil {
		return err
	}
	if err := s.ledger.Release(ctx, tx, order.ID); err != nil {
		return err
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventPaymentFailed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.PaymentFailedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Provider:    input.Provider,
			Reason:      input.FailureReason,
			FailedAt:    time.Now().UTC(),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue payment failed event")
	}
	return nil
}

func (s *service) ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	stale, err := s.repo.FindAwaitingPaymentBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan stale orders")
	}

	expired := 0
	for _, candidate := range stale {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			order, err := loadOrder(ctx, repo, candidate.ID)
			if err != nil {
				return err
			}
			// Re-check under the transaction; a payment callback may have
			// settled the order between the scan and now.
			if order.OrderStatus != enums.OrderStatusAwaitingPayment || !order.CreatedAt.Before(cutoff) {
				return nil
			}
			if err := EnsureTransition(order.OrderStatus, enums.OrderStatusCancelled); err != nil {
				return err
			}
			note := "awaiting payment window expired"
			if err := s.applyStatus(ctx, repo, order, enums.OrderStatusCancelled, &note, nil); err != nil {
				return err
			}
			if err := s.ledger.Release(ctx, tx, order.ID); err != nil {
				return err
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventOrderExpired,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: payloads.OrderExpiredEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					AgeSeconds:  int64(time.Since(order.CreatedAt).Seconds()),
					ExpiredAt:   time.Now().UTC(),
				},
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order expired event")
			}
			expired++
			return nil
		})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				// Another writer got there first; the next sweep pass will
				// pick the order up again if it still qualifies.
				continue
			}
			return expired, err
		}
	}
	return expired, nil
}

// applyStatus performs the serialized per-order mutation: a version-guarded
// update plus one appended history entry. Losers of the version race get a
// retryable conflict.
func (s *service) applyStatus(ctx context.Context, repo Repository, order *models.Order, to enums.OrderStatus, note *string, extra map[string]any) error {
	updates := map[string]any{"order_status": to}
	for k, v := range extra {
		updates[k] = v
	}
	rows, err := repo.UpdateGuarded(ctx, order.ID, order.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	if err := repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
		OrderID: order.ID,
		Status:  to,
		Note:    note,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	return nil
}

func (s *service) recordGatewayTransaction(ctx context.Context, repo Repository, order *models.Order, input PaymentResultInput) error {
	existing, err := repo.FindGatewayTransactionByOrder(ctx, order.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gateway transaction")
	}
	if existing != nil {
		return nil
	}
	txn := &models.GatewayTransaction{
		OrderID:        order.ID,
		Provider:       input.Provider,
		TransactionRef: input.TransactionRef,
		SessionRef:     input.SessionRef,
		RawPayload:     input.RawPayload,
	}
	if err := repo.CreateGatewayTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist gateway transaction")
	}
	return nil
}

func loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// newOrderNumber builds a human-facing reference like TH-20250901-3FA2C1.
func newOrderNumber(now time.Time) string {
	raw := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(raw[:3]))
	return fmt.Sprintf("TH-%s-%s", now.Format("20060102"), suffix)
}

package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

// ReserveItem is one stock hold request within an order submission.
type ReserveItem struct {
	ProductID uuid.UUID
	Size      string
	Qty       int
}

// Ledger owns the per-SKU stock counters. Reserve/Commit/Release run inside
// the caller's transaction so order status and ledger movement land in one
// atomic unit.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []ReserveItem) error
	Commit(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

type ledger struct{}

// NewLedger exposes the default inventory ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

// Reserve takes a hold for every item or fails the whole batch. The caller's
// transaction rollback undoes any holds taken before the failing line.
func (ledger) Reserve(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []ReserveItem) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no items to reserve")
	}

	for _, item := range items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive").
				WithDetails(map[string]any{"product_id": item.ProductID, "size": item.Size})
		}

		// The WHERE guard serializes per SKU: concurrent reserves against the
		// same (product_id, size) row cannot both pass the available check.
		res := tx.WithContext(ctx).Exec(`
			UPDATE inventory_items
			SET available_qty = available_qty - ?,
				reserved_qty = reserved_qty + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE product_id = ? AND size = ? AND available_qty >= ?
		`, item.Qty, item.Qty, item.ProductID, item.Size, item.Qty)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve inventory")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
				WithDetails(map[string]any{"product_id": item.ProductID, "size": item.Size, "qty": item.Qty})
		}

		reservation := models.InventoryReservation{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Qty:       item.Qty,
			State:     enums.ReservationStateHeld,
		}
		if err := tx.WithContext(ctx).Create(&reservation).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist reservation")
		}
	}
	return nil
}

// Commit permanently consumes the held stock for the order. Reservations
// already resolved are left untouched, so replays are no-ops.
func (ledger) Commit(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return resolveReservations(ctx, tx, orderID, enums.ReservationStateCommitted)
}

// Release returns held stock to availability. Reservations already resolved
// are left untouched, so replays are no-ops.
func (ledger) Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return resolveReservations(ctx, tx, orderID, enums.ReservationStateReleased)
}

func resolveReservations(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, target enums.ReservationState) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for reservation resolution")
	}

	var held []models.InventoryReservation
	err := tx.WithContext(ctx).
		Where("order_id = ? AND state = ?", orderID, enums.ReservationStateHeld).
		Find(&held).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load held reservations")
	}

	now := time.Now().UTC()
	for _, reservation := range held {
		// Conditional flip from held guarantees exactly-once resolution even
		// when two resolvers race on the same reservation row.
		res := tx.WithContext(ctx).Model(&models.InventoryReservation{}).
			Where("id = ? AND state = ?", reservation.ID, enums.ReservationStateHeld).
			Updates(map[string]any{
				"state":       target,
				"resolved_at": now,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "resolve reservation")
		}
		if res.RowsAffected == 0 {
			continue
		}

		if err := applyCounterMove(ctx, tx, reservation, target); err != nil {
			return err
		}
	}
	return nil
}

func applyCounterMove(ctx context.Context, tx *gorm.DB, reservation models.InventoryReservation, target enums.ReservationState) error {
	var res *gorm.DB
	switch target {
	case enums.ReservationStateCommitted:
		res = tx.WithContext(ctx).Exec(`
			UPDATE inventory_items
			SET reserved_qty = reserved_qty - ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE product_id = ? AND size = ? AND reserved_qty >= ?
		`, reservation.Qty, reservation.ProductID, reservation.Size, reservation.Qty)
	case enums.ReservationStateReleased:
		res = tx.WithContext(ctx).Exec(`
			UPDATE inventory_items
			SET available_qty = available_qty + ?,
				reserved_qty = reserved_qty - ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE product_id = ? AND size = ? AND reserved_qty >= ?
		`, reservation.Qty, reservation.Qty, reservation.ProductID, reservation.Size, reservation.Qty)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "unsupported reservation target state")
	}
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "apply inventory counter move")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, "inventory counters out of sync with reservation").
			WithDetails(map[string]any{"product_id": reservation.ProductID, "size": reservation.Size})
	}
	return nil
}

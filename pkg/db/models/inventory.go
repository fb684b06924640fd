package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanphm/teehouse-backend/pkg/enums"
)

// InventoryItem tracks available/reserved counts per product and size.
type InventoryItem struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Size         string    `gorm:"column:size;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	ReservedQty  int       `gorm:"column:reserved_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// InventoryReservation is a ledger hold taken at order submission. Each
// reservation resolves exactly once, to committed or released.
type InventoryReservation struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	Size       string                 `gorm:"column:size;not null"`
	Qty        int                    `gorm:"column:qty;not null"`
	State      enums.ReservationState `gorm:"column:state;not null;default:'held'"`
	ResolvedAt *time.Time             `gorm:"column:resolved_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanphm/teehouse-backend/pkg/enums"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

// Order is the aggregate root for a customer purchase. All money fields are
// VND and recomputed server-side; the version column guards concurrent
// status mutation.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string                `gorm:"column:order_number;uniqueIndex;not null"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Subtotal        int64                 `gorm:"column:subtotal;not null"`
	ShippingFee     int64                 `gorm:"column:shipping_fee;not null"`
	Discount        int64                 `gorm:"column:discount;not null;default:0"`
	TotalAmount     int64                 `gorm:"column:total_amount;not null"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;not null;default:'unpaid'"`
	OrderStatus     enums.OrderStatus     `gorm:"column:order_status;not null"`
	Version         int64                 `gorm:"column:version;not null;default:0"`
	Notes           *string               `gorm:"column:notes"`
	Lines           []OrderLine           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory   []OrderStatusEntry    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transaction     *GatewayTransaction   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine snapshots one cart line at order time. Product name, image and
// unit price are copied so later catalog edits never alter the order.
type OrderLine struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	LineIndex    int                 `gorm:"column:line_index;not null"`
	ProductID    uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string              `gorm:"column:product_name;not null"`
	ProductImage string              `gorm:"column:product_image"`
	Size         string              `gorm:"column:size;not null"`
	Color        string              `gorm:"column:color"`
	Qty          int                 `gorm:"column:qty;not null"`
	UnitPrice    int64               `gorm:"column:unit_price;not null"`
	CustomDesign *types.CustomDesign `gorm:"column:custom_design;type:jsonb;serializer:json"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderStatusEntry is the append-only status history. Rows are inserted by
// the state machine and never updated.
type OrderStatusEntry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Note      *string           `gorm:"column:note"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// GatewayTransaction records the verified outcome of an external payment.
// Written only by the reconciliation service.
type GatewayTransaction struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Provider       string    `gorm:"column:provider;not null"`
	TransactionRef string    `gorm:"column:transaction_ref"`
	SessionRef     string    `gorm:"column:session_ref"`
	RawPayload     []byte    `gorm:"column:raw_payload;type:jsonb"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

// CreateOrderLine is the client's intent for one cart line. Money fields are
// deliberately absent; pricing is recomputed server-side.
type CreateOrderLine struct {
	ProductID    uuid.UUID           `json:"product_id"`
	Qty          int                 `json:"qty"`
	Size         string              `json:"size"`
	Color        string              `json:"color,omitempty"`
	CustomDesign *types.CustomDesign `json:"custom_design,omitempty"`
}

// CreateOrderInput carries an immutable cart snapshot into order creation.
type CreateOrderInput struct {
	UserID        uuid.UUID
	Lines         []CreateOrderLine
	Address       types.ShippingAddress
	PaymentMethod enums.PaymentMethod
	Notes         *string
}

// CancelOrderInput captures a user or admin cancellation request.
type CancelOrderInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
	Reason      string
}

// ReplaceDesignInput swaps the custom design on one order line.
type ReplaceDesignInput struct {
	OrderID     uuid.UUID
	LineIndex   int
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
	Design      types.CustomDesign
}

// AdvanceFulfillmentInput moves an order one step along the fulfillment chain.
type AdvanceFulfillmentInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	Note        *string
}

// PaymentResultInput is the verified outcome the reconciliation layer feeds
// into the state machine.
type PaymentResultInput struct {
	OrderID        uuid.UUID
	Succeeded      bool
	Provider       string
	TransactionRef string
	SessionRef     string
	RawPayload     []byte
	FailureReason  string
}

// StatusEntryView is one row of the append-only history.
type StatusEntryView struct {
	Status    enums.OrderStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// LineView is the read model for an order line.
type LineView struct {
	LineIndex    int                 `json:"line_index"`
	ProductID    uuid.UUID           `json:"product_id"`
	ProductName  string              `json:"product_name"`
	ProductImage string              `json:"product_image,omitempty"`
	Size         string              `json:"size"`
	Color        string              `json:"color,omitempty"`
	Qty          int                 `json:"qty"`
	UnitPrice    int64               `json:"unit_price"`
	CustomDesign *types.CustomDesign `json:"custom_design,omitempty"`
}

// OrderView is the read model returned to API callers.
type OrderView struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     string                `json:"order_number"`
	UserID          uuid.UUID             `json:"user_id"`
	Subtotal        int64                 `json:"subtotal"`
	ShippingFee     int64                 `json:"shipping_fee"`
	Discount        int64                 `json:"discount"`
	TotalAmount     int64                 `json:"total_amount"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus   `json:"payment_status"`
	OrderStatus     enums.OrderStatus     `json:"order_status"`
	Notes           *string               `json:"notes,omitempty"`
	Lines           []LineView            `json:"lines"`
	StatusHistory   []StatusEntryView     `json:"status_history"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewOrderView maps the persisted aggregate to its read model.
func NewOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Subtotal:        order.Subtotal,
		ShippingFee:     order.ShippingFee,
		Discount:        order.Discount,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		OrderStatus:     order.OrderStatus,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, LineView{
			LineIndex:    line.LineIndex,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			Size:         line.Size,
			Color:        line.Color,
			Qty:          line.Qty,
			UnitPrice:    line.UnitPrice,
			CustomDesign: line.CustomDesign,
		})
	}
	for _, entry := range order.StatusHistory {
		view.StatusHistory = append(view.StatusHistory, StatusEntryView{
			Status:    entry.Status,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return view
}

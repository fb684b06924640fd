package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent announces a newly submitted order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        uuid.UUID `json:"userId"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalAmount   int64     `json:"totalAmount"`
	LineCount     int       `json:"lineCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrderStatusChangedEvent records a state-machine transition.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	FromStatus     string    `json:"fromStatus"`
	ToStatus       string    `json:"toStatus"`
	Note           string    `json:"note,omitempty"`
	RefundRequired bool      `json:"refundRequired,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// OrderExpiredEvent is emitted when the sweep cancels a stale
// awaiting-payment order.
type OrderExpiredEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	AgeSeconds  int64     `json:"ageSeconds"`
	ExpiredAt   time.Time `json:"expiredAt"`
}

// PaymentConfirmedEvent is emitted after a gateway result verifies as paid.
type PaymentConfirmedEvent struct {
	OrderID        uuid.UUID `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	Provider       string    `json:"provider"`
	TransactionRef string    `json:"transactionRef,omitempty"`
	Amount         int64     `json:"amount"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
}

// PaymentFailedEvent is emitted when a gateway result verifies as failed.
type PaymentFailedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Provider    string    `json:"provider"`
	Reason      string    `json:"reason,omitempty"`
	FailedAt    time.Time `json:"failedAt"`
}

// DesignUpdatedEvent records a custom-design replacement on a pending or
// confirmed order.
type DesignUpdatedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	LineIndex  int       `json:"lineIndex"`
	ImageRef   string    `json:"imageRef"`
	PreviewRef string    `json:"previewRef,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

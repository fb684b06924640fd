package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	"github.com/tuanphm/teehouse-backend/pkg/pagination"
)

// Repository defines persistence operations for the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderLines(ctx context.Context, lines []models.OrderLine) error
	AppendStatusEntry(ctx context.Context, entry *models.OrderStatusEntry) error
	CreateGatewayTransaction(ctx context.Context, txn *models.GatewayTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindGatewayTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*models.GatewayTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	FindAwaitingPaymentBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	// UpdateGuarded applies updates only when the stored version still matches
	// expectedVersion, bumping version by one. Returns gorm.ErrRecordNotFound
	// semantics via zero rows; callers map that to a conflict.
	UpdateGuarded(ctx context.Context, orderID uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
	UpdateLineDesign(ctx context.Context, orderID uuid.UUID, lineIndex int, design any) (int64, error)
}

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	GetByNumber(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderNumber string) (*OrderView, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	Cancel(ctx context.Context, input CancelOrderInput) error
	ReplaceDesign(ctx context.Context, input ReplaceDesignInput) (*OrderView, error)
	AdvanceFulfillment(ctx context.Context, input AdvanceFulfillmentInput) (*OrderView, error)
	ApplyPaymentResult(ctx context.Context, input PaymentResultInput) error
	ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

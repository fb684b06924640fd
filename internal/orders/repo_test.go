package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	"github.com/tuanphm/teehouse-backend/pkg/pagination"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE orders (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  subtotal INTEGER NOT NULL,
  shipping_fee INTEGER NOT NULL,
  discount INTEGER NOT NULL DEFAULT 0,
  total_amount INTEGER NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  order_status TEXT NOT NULL,
  version INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE order_lines (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  order_id TEXT NOT NULL,
  line_index INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  product_image TEXT,
  size TEXT NOT NULL,
  color TEXT,
  qty INTEGER NOT NULL,
  unit_price INTEGER NOT NULL,
  custom_design TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE order_status_entries (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT,
  created_at DATETIME
);`, `
CREATE TABLE gateway_transactions (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  order_id TEXT NOT NULL UNIQUE,
  provider TEXT NOT NULL,
  transaction_ref TEXT,
  session_ref TEXT,
  raw_payload TEXT,
  created_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func seedOrder(t *testing.T, repo Repository, userID uuid.UUID, number string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order, err := repo.CreateOrder(context.Background(), &models.Order{
		OrderNumber:   number,
		UserID:        userID,
		Subtotal:      300000,
		ShippingFee:   20000,
		TotalAmount:   320000,
		PaymentMethod: enums.PaymentMethodDomesticGateway,
		PaymentStatus: enums.PaymentStatusUnpaid,
		OrderStatus:   status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, order.ID)
	return order
}

func TestRepoFindByOrderNumberPreloadsChildren(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), "TH-20260101-0001", enums.OrderStatusPending, time.Now().UTC())

	// Insert out of order to prove line_index drives the sort.
	require.NoError(t, repo.CreateOrderLines(ctx, []models.OrderLine{
		{OrderID: order.ID, LineIndex: 1, ProductID: uuid.New(), ProductName: "Tee B", Size: "L", Qty: 1, UnitPrice: 150000},
		{OrderID: order.ID, LineIndex: 0, ProductID: uuid.New(), ProductName: "Tee A", Size: "M", Qty: 2, UnitPrice: 75000},
	}))
	note := "order placed"
	require.NoError(t, repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
		OrderID:   order.ID,
		Status:    enums.OrderStatusPending,
		Note:      &note,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}))
	require.NoError(t, repo.AppendStatusEntry(ctx, &models.OrderStatusEntry{
		OrderID:   order.ID,
		Status:    enums.OrderStatusAwaitingPayment,
		CreatedAt: time.Now().UTC(),
	}))

	found, err := repo.FindByOrderNumber(ctx, "TH-20260101-0001")
	require.NoError(t, err)
	require.Len(t, found.Lines, 2)
	assert.Equal(t, "Tee A", found.Lines[0].ProductName)
	assert.Equal(t, "Tee B", found.Lines[1].ProductName)
	require.Len(t, found.StatusHistory, 2)
	assert.Equal(t, enums.OrderStatusPending, found.StatusHistory[0].Status)
	assert.Equal(t, enums.OrderStatusAwaitingPayment, found.StatusHistory[1].Status)
}

func TestRepoUpdateGuarded(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), "TH-20260101-0002", enums.OrderStatusAwaitingPayment, time.Now().UTC())

	affected, err := repo.UpdateGuarded(ctx, order.ID, 0, map[string]any{
		"order_status":   enums.OrderStatusConfirmed,
		"payment_status": enums.PaymentStatusPaid,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.EqualValues(t, 1, reloaded.Version)

	// Stale version writes nothing.
	affected, err = repo.UpdateGuarded(ctx, order.ID, 0, map[string]any{
		"order_status": enums.OrderStatusCancelled,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	unchanged, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, unchanged.OrderStatus)
	assert.EqualValues(t, 1, unchanged.Version)
}

func TestRepoFindAwaitingPaymentBefore(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	stale := seedOrder(t, repo, userID, "TH-20260101-0003", enums.OrderStatusAwaitingPayment, now.Add(-time.Hour))
	seedOrder(t, repo, userID, "TH-20260101-0004", enums.OrderStatusAwaitingPayment, now.Add(-time.Minute))
	seedOrder(t, repo, userID, "TH-20260101-0005", enums.OrderStatusConfirmed, now.Add(-2*time.Hour))

	rows, err := repo.FindAwaitingPaymentBefore(ctx, now.Add(-30*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}

func TestRepoListByUserPaginates(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		seedOrder(t, repo, userID, "TH-20260102-000"+string(rune('1'+i)), enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	// Another user's orders never leak into the page.
	seedOrder(t, repo, uuid.New(), "TH-20260102-0009", enums.OrderStatusPending, base)

	first, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "TH-20260102-0003", first.Orders[0].OrderNumber)
	assert.Equal(t, "TH-20260102-0002", first.Orders[1].OrderNumber)

	second, err := repo.ListByUser(ctx, userID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, "TH-20260102-0001", second.Orders[0].OrderNumber)
	assert.Empty(t, second.NextCursor)
}

func TestRepoListByUserRejectsGarbageCursor(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ListByUser(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
}

func TestRepoUpdateLineDesign(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), "TH-20260101-0006", enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, repo.CreateOrderLines(ctx, []models.OrderLine{
		{OrderID: order.ID, LineIndex: 0, ProductID: uuid.New(), ProductName: "Tee", Size: "M", Qty: 1, UnitPrice: 150000},
	}))

	design := &types.CustomDesign{
		ImageRef: "designs/dragon.png",
		Placement: types.DesignPlacement{
			Location: types.PlacementFront,
			X:        50, Y: 40, Width: 30, Height: 30, Scale: 1,
		},
	}

	affected, err := repo.UpdateLineDesign(ctx, order.ID, 0, design)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	affected, err = repo.UpdateLineDesign(ctx, order.ID, 7, design)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Lines, 1)
	require.NotNil(t, reloaded.Lines[0].CustomDesign)
	assert.Equal(t, "designs/dragon.png", reloaded.Lines[0].CustomDesign.ImageRef)
}

func TestRepoGatewayTransactionUniquePerOrder(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), "TH-20260101-0007", enums.OrderStatusAwaitingPayment, time.Now().UTC())
	require.NoError(t, repo.CreateGatewayTransaction(ctx, &models.GatewayTransaction{
		OrderID:        order.ID,
		Provider:       "domestic_gateway",
		TransactionRef: "14581234",
	}))

	err := repo.CreateGatewayTransaction(ctx, &models.GatewayTransaction{
		OrderID:        order.ID,
		Provider:       "domestic_gateway",
		TransactionRef: "14581235",
	})
	require.Error(t, err)

	found, err := repo.FindGatewayTransactionByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "14581234", found.TransactionRef)
}

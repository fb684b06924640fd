package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
)

// Repository exposes reads over inventory counters and reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, productID uuid.UUID, size string) (*models.InventoryItem, error)
	FindReservationsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryReservation, error)
	CountHeldByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	UpsertItem(ctx context.Context, item *models.InventoryItem) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, productID uuid.UUID, size string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindReservationsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryReservation, error) {
	var rows []models.InventoryReservation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountHeldByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryReservation{}).
		Where("order_id = ? AND state = ?", orderID, enums.ReservationStateHeld).
		Count(&count).Error
	return count, err
}

func (r *repository) UpsertItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

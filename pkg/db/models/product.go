package models

import (
	"time"

	"github.com/google/uuid"
)

// Product carries the server-held authoritative price. Client-supplied
// prices are display-only and never trusted.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	ImageURL  string    `gorm:"column:image_url"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

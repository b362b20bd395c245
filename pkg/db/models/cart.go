package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's pending line items until checkout converts them into an
// order. Conversion creates fresh order line items and deletes the cart's, so
// a line item never belongs to both sides.
type Cart struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

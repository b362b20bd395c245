package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

// Notification is the durable record behind the live channels. ExternalID is
// the idempotency key: dispatching the same event twice persists once.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID  string                 `gorm:"column:external_id;not null;uniqueIndex:ux_notifications_external_id"`
	Type        enums.NotificationType `gorm:"column:type;not null"`
	Title       string                 `gorm:"column:title;not null"`
	Message     string                 `gorm:"column:message;type:text;not null"`
	OrderNumber string                 `gorm:"column:order_number"`
	OrderStatus string                 `gorm:"column:order_status"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Read        bool                   `gorm:"column:read;not null;default:false"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

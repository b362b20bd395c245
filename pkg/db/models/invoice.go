package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is created in the same transaction as its order and never mutated.
type Invoice struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber string    `gorm:"column:invoice_number;not null;uniqueIndex"`
	DateCreated   time.Time `gorm:"column:date_created;not null"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

// Order is the immutable record produced by checkout. Line items and the
// invoice are loaded and deleted through explicit repository calls; only the
// status, payment status and payment reference change after creation.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber      string               `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	OrderDate        time.Time            `gorm:"column:order_date;not null"`
	Status           enums.OrderStatus    `gorm:"column:status;not null;default:'PENDING'"`
	UserID           uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	PaymentMethod    string               `gorm:"column:payment_method;not null"`
	PaymentStatus    *enums.PaymentStatus `gorm:"column:payment_status"`
	PaymentReference *string              `gorm:"column:payment_reference"`
	TotalAmount      decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`

	ShippingFirstName string `gorm:"column:shipping_first_name;not null"`
	ShippingLastName  string `gorm:"column:shipping_last_name;not null"`
	ShippingPhone     string `gorm:"column:shipping_phone;not null"`
	ShippingAddress   string `gorm:"column:shipping_address;not null"`
	ShippingCity      string `gorm:"column:shipping_city;not null"`
	ShippingState     string `gorm:"column:shipping_state;not null"`
	ShippingZipCode   string `gorm:"column:shipping_zip_code;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

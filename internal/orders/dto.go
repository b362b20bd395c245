package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

// ShippingSnapshot is copied verbatim onto the order header; later address
// book edits never touch past orders.
type ShippingSnapshot struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
}

// BuildItem is one requested product-quantity pair.
type BuildItem struct {
	ProductID uuid.UUID
	Qty       int
}

// BuildInput carries everything the builder needs inside the checkout
// transaction. ClientTotal, when present, is compared against the recomputed
// total and logged on mismatch; it is never trusted.
type BuildInput struct {
	Items         []BuildItem
	PaymentMethod string
	ClientTotal   *decimal.Decimal
	Shipping      ShippingSnapshot
	CartID        *uuid.UUID
}

// BuildResult is the persisted aggregate returned from a successful build.
type BuildResult struct {
	Order   *models.Order
	Items   []models.LineItem
	Invoice *models.Invoice
}

// Detail is the full read-side representation of one order.
type Detail struct {
	Order   *models.Order     `json:"order"`
	Items   []models.LineItem `json:"items"`
	Invoice *models.Invoice   `json:"invoice,omitempty"`
}

// StatusChange reports a committed transition for notification fan-out.
type StatusChange struct {
	OrderID     uuid.UUID
	OrderNumber string
	UserID      uuid.UUID
	From        enums.OrderStatus
	To          enums.OrderStatus
	OccurredAt  time.Time
}

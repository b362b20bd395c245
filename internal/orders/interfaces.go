package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

// Repository defines persistence operations for orders, line items and
// invoices. Related rows are loaded and removed through explicit calls; no
// ORM cascade.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	CreateLineItems(ctx context.Context, items []models.LineItem) error

	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.LineItem, error)
	FindInvoice(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status enums.OrderStatus) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus) ([]models.Order, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Order, error)

	// UpdateStatusGuarded flips status only when the row still holds the
	// expected current status. Returns false when the guard rejected it.
	UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, current, target enums.OrderStatus) (bool, error)
	UpdatePayment(ctx context.Context, orderID uuid.UUID, status *enums.PaymentStatus, reference *string) error

	DeleteInvoiceByOrder(ctx context.Context, orderID uuid.UUID) error
	DeleteLineItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/internal/inventory"
	"github.com/ovenlight/bakeshop-backend/pkg/db"
	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
)

const orderNumberConstraint = "ux_orders_order_number"

// Builder assembles the order aggregate inside the caller's transaction:
// header, invoice, line items, stock decrements and cart clearing all commit
// or roll back together.
type Builder struct {
	repo Repository
	gate inventory.Gate
	logg *logger.Logger
	now  func() time.Time
}

// NewBuilder wires the order builder.
func NewBuilder(repo Repository, gate inventory.Gate, logg *logger.Logger) (*Builder, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("inventory gate required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Builder{repo: repo, gate: gate, logg: logg, now: time.Now}, nil
}

// Build creates the order aggregate for the owner. Stock is re-checked and
// consumed per line inside tx, so a concurrent checkout that drained a
// product rolls this one back whole.
func (b *Builder) Build(ctx context.Context, tx *gorm.DB, owner *models.User, input BuildInput) (*BuildResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "order owner required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	repo := b.repo.WithTx(tx)
	now := b.now().UTC()

	order, err := b.createHeader(ctx, repo, owner, input, now)
	if err != nil {
		return nil, err
	}
	ctx = b.logg.WithOrderNumber(ctx, order.OrderNumber)

	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: InvoiceNumberFor(order.OrderNumber),
		DateCreated:   now,
		OrderID:       order.ID,
	}
	if err := repo.CreateInvoice(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}

	items, total, err := b.buildLines(ctx, tx, repo, order, input.Items, now)
	if err != nil {
		return nil, err
	}

	if input.ClientTotal != nil && !input.ClientTotal.Equal(total) {
		b.logg.Warn(b.logg.WithFields(ctx, map[string]any{
			"client_total":   input.ClientTotal.String(),
			"computed_total": total.String(),
		}), "client total mismatch, using recomputed total")
	}

	order.TotalAmount = total
	err = tx.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumn("total_amount", total).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store order total")
	}

	if input.CartID != nil {
		err = tx.WithContext(ctx).
			Where("cart_id = ?", *input.CartID).
			Delete(&models.LineItem{}).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
	}

	return &BuildResult{Order: order, Items: items, Invoice: invoice}, nil
}

// createHeader inserts the order row, retrying once with a fresh number when
// the unique index reports a collision.
func (b *Builder) createHeader(ctx context.Context, repo Repository, owner *models.User, input BuildInput, now time.Time) (*models.Order, error) {
	for attempt := 0; attempt < 2; attempt++ {
		number, err := NewOrderNumber(now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate order number")
		}
		order := &models.Order{
			ID:                uuid.New(),
			OrderNumber:       number,
			OrderDate:         now,
			Status:            enums.OrderStatusPending,
			UserID:            owner.ID,
			PaymentMethod:     input.PaymentMethod,
			TotalAmount:       decimal.Zero,
			ShippingFirstName: input.Shipping.FirstName,
			ShippingLastName:  input.Shipping.LastName,
			ShippingPhone:     input.Shipping.Phone,
			ShippingAddress:   input.Shipping.Address,
			ShippingCity:      input.Shipping.City,
			ShippingState:     input.Shipping.State,
			ShippingZipCode:   input.Shipping.ZipCode,
		}
		err = repo.CreateOrder(ctx, order)
		if err == nil {
			return order, nil
		}
		if db.IsUniqueViolation(err, orderNumberConstraint) && attempt == 0 {
			b.logg.Warn(ctx, "order number collision, retrying with fresh suffix")
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "order number allocation failed after retry")
}

func (b *Builder) buildLines(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, requested []BuildItem, now time.Time) ([]models.LineItem, decimal.Decimal, error) {
	total := decimal.Zero
	items := make([]models.LineItem, 0, len(requested))

	for _, req := range requested {
		if req.Qty <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": req.ProductID})
		}

		var product models.Product
		err := tx.WithContext(ctx).Where("id = ?", req.ProductID).First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": req.ProductID})
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if err := b.gate.Decrement(ctx, tx, product.ID, req.Qty); err != nil {
			return nil, decimal.Zero, err
		}

		orderID := order.ID
		items = append(items, models.LineItem{
			ID:          uuid.New(),
			OrderID:     &orderID,
			Quantity:    req.Qty,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			ImageURL:    product.ImageURL,
			CreatedAt:   now,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(req.Qty))))
	}

	if err := repo.CreateLineItems(ctx, items); err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create line items")
	}
	return items, total, nil
}

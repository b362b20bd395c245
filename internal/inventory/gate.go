package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
)

// Demand is one product-quantity requirement to verify or consume.
type Demand struct {
	ProductID uuid.UUID
	Qty       int
}

// Gate guards product stock. CheckAvailability is advisory; Decrement is the
// authoritative consume and closes the check-then-act window at the row.
type Gate interface {
	CheckAvailability(ctx context.Context, tx *gorm.DB, demands []Demand) error
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type gate struct{}

// NewGate builds the stock gate. It carries no state; every call runs on the
// handle the caller supplies so checkout keeps one transaction boundary.
func NewGate() Gate {
	return &gate{}
}

func (g *gate) CheckAvailability(ctx context.Context, tx *gorm.DB, demands []Demand) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}
	for _, demand := range demands {
		if demand.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": demand.ProductID})
		}
		var product models.Product
		err := tx.WithContext(ctx).Where("id = ?", demand.ProductID).First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": demand.ProductID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
		}
		if product.Stock < demand.Qty {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(map[string]any{
					"product_id": product.ID,
					"requested":  demand.Qty,
					"available":  product.Stock,
				})
		}
	}
	return nil
}

func (g *gate) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	// Conditional update: the WHERE clause rejects oversell even when a
	// concurrent checkout got between the availability check and here.
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"product_id": productID, "requested": qty})
	}
	return nil
}

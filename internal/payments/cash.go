package payments

import (
	"context"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

type cashStrategy struct{}

// NewCashStrategy settles cash-on-delivery orders. Payment stays pending
// until the courier collects.
func NewCashStrategy() Strategy {
	return &cashStrategy{}
}

func (s *cashStrategy) Method() string { return MethodCash }

func (s *cashStrategy) DisplayName() string { return "Cash on Delivery" }

func (s *cashStrategy) Description() string {
	return "Pay in cash when your order arrives."
}

func (s *cashStrategy) Process(_ context.Context, order *models.Order, _ Details) error {
	status := enums.PaymentStatusPending
	order.PaymentStatus = &status
	order.PaymentReference = nil
	return nil
}

package payments

import (
	"context"
	"fmt"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
)

type bankTransferStrategy struct{}

// NewBankTransferStrategy issues a transfer reference the customer wires
// against. Payment stays pending until reconciliation.
func NewBankTransferStrategy() Strategy {
	return &bankTransferStrategy{}
}

func (s *bankTransferStrategy) Method() string { return MethodBankTransfer }

func (s *bankTransferStrategy) DisplayName() string { return "Bank Transfer" }

func (s *bankTransferStrategy) Description() string {
	return "Wire the total to our account using the reference on your invoice."
}

func (s *bankTransferStrategy) Process(_ context.Context, order *models.Order, _ Details) error {
	status := enums.PaymentStatusPending
	ref := fmt.Sprintf("BT-%s", order.OrderNumber)
	order.PaymentStatus = &status
	order.PaymentReference = &ref
	return nil
}

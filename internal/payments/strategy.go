package payments

import (
	"context"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
)

// Method names are the wire values accepted at checkout.
const (
	MethodCash         = "cash"
	MethodCreditCard   = "credit_card"
	MethodBankTransfer = "bank_transfer"
)

// Details carries the method-specific fields the client submitted alongside
// the checkout request. Only the strategy for the chosen method reads them.
type Details struct {
	CardNumber     string
	CardHolderName string
}

// Strategy settles payment for a freshly committed order. Process mutates the
// order's payment fields in memory; the caller persists them.
type Strategy interface {
	Method() string
	DisplayName() string
	Description() string
	Process(ctx context.Context, order *models.Order, details Details) error
}

// MethodDescriptor is the public shape returned by the methods endpoint.
type MethodDescriptor struct {
	Method      string `json:"method"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

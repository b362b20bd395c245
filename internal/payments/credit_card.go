package payments

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
)

type creditCardStrategy struct{}

// NewCreditCardStrategy settles card orders immediately. Real gateway calls
// sit behind the bakery's storefront; this service records the outcome.
func NewCreditCardStrategy() Strategy {
	return &creditCardStrategy{}
}

func (s *creditCardStrategy) Method() string { return MethodCreditCard }

func (s *creditCardStrategy) DisplayName() string { return "Credit Card" }

func (s *creditCardStrategy) Description() string {
	return "Pay now with a credit or debit card."
}

func (s *creditCardStrategy) Process(_ context.Context, order *models.Order, details Details) error {
	digits := digitsOnly(details.CardNumber)
	if len(digits) < 12 {
		return pkgerrors.New(pkgerrors.CodeValidation, "card number required")
	}

	status := enums.PaymentStatusPaid
	ref := fmt.Sprintf("CARD-****%s", digits[len(digits)-4:])
	order.PaymentStatus = &status
	order.PaymentReference = &ref
	return nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

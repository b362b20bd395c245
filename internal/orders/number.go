package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Ambiguous glyphs (0/O, 1/I/L) are excluded so support staff can read the
// suffix back over the phone.
const numberSuffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const numberSuffixLength = 4

// NewOrderNumber produces a human-readable order number of the form
// ORD-20250812-K4XQ. Uniqueness is enforced by the orders table; callers
// retry on a unique violation.
func NewOrderNumber(now time.Time) (string, error) {
	suffix, err := randomSuffix(numberSuffixLength)
	if err != nil {
		return "", fmt.Errorf("order number suffix: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

// InvoiceNumberFor derives the invoice number from its order.
func InvoiceNumberFor(orderNumber string) string {
	return "INV-" + orderNumber
}

func randomSuffix(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = numberSuffixAlphabet[int(b)%len(numberSuffixAlphabet)]
	}
	return string(out), nil
}

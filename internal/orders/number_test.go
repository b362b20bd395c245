package orders

import (
	"regexp"
	"testing"
	"time"
)

func TestNewOrderNumberFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 12, 23, 59, 0, 0, time.UTC)
	number, err := NewOrderNumber(now)
	if err != nil {
		t.Fatalf("new order number: %v", err)
	}

	pattern := regexp.MustCompile(`^ORD-20250812-[A-Z2-9]{4}$`)
	if !pattern.MatchString(number) {
		t.Fatalf("unexpected format %s", number)
	}
}

func TestNewOrderNumberAvoidsAmbiguousGlyphs(t *testing.T) {
	t.Parallel()

	banned := "01OIL"
	for i := 0; i < 50; i++ {
		number, err := NewOrderNumber(time.Now())
		if err != nil {
			t.Fatalf("new order number: %v", err)
		}
		suffix := number[len(number)-4:]
		for _, r := range suffix {
			for _, b := range banned {
				if r == b {
					t.Fatalf("suffix %s contains ambiguous glyph %c", suffix, b)
				}
			}
		}
	}
}

func TestInvoiceNumberFor(t *testing.T) {
	t.Parallel()

	if got := InvoiceNumberFor("ORD-20250812-K4XQ"); got != "INV-ORD-20250812-K4XQ" {
		t.Fatalf("unexpected invoice number %s", got)
	}
}

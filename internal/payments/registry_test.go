package payments

import (
	"context"
	"testing"

	"github.com/ovenlight/bakeshop-backend/pkg/db/models"
	"github.com/ovenlight/bakeshop-backend/pkg/enums"
	pkgerrors "github.com/ovenlight/bakeshop-backend/pkg/errors"
)

func TestDefaultRegistryMethods(t *testing.T) {
	t.Parallel()

	reg, err := NewDefaultRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	methods := reg.Methods()
	if len(methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(methods))
	}
	if methods[0].Method != MethodCash || methods[1].Method != MethodCreditCard || methods[2].Method != MethodBankTransfer {
		t.Fatalf("unexpected method order: %+v", methods)
	}
	for _, m := range methods {
		if m.DisplayName == "" || m.Description == "" {
			t.Fatalf("descriptor incomplete: %+v", m)
		}
	}
}

func TestRegistryResolveUnknownMethod(t *testing.T) {
	t.Parallel()

	reg, err := NewDefaultRegistry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	if reg.Validate("crypto") {
		t.Fatal("crypto should not validate")
	}
	_, err = reg.Resolve("crypto")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(NewCashStrategy(), NewCashStrategy())
	if err == nil {
		t.Fatal("expected duplicate strategy error")
	}
}

func TestCashProcessLeavesPaymentPending(t *testing.T) {
	t.Parallel()

	order := &models.Order{OrderNumber: "ORD-20250812-A1B2"}
	if err := NewCashStrategy().Process(context.Background(), order, Details{}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if order.PaymentStatus == nil || *order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %v", order.PaymentStatus)
	}
	if order.PaymentReference != nil {
		t.Fatalf("cash should carry no reference, got %v", *order.PaymentReference)
	}
}

func TestCreditCardProcessMasksReference(t *testing.T) {
	t.Parallel()

	order := &models.Order{OrderNumber: "ORD-20250812-A1B2"}
	details := Details{CardNumber: "4111 1111 1111 1234", CardHolderName: "M. Ferrer"}
	if err := NewCreditCardStrategy().Process(context.Background(), order, details); err != nil {
		t.Fatalf("process: %v", err)
	}
	if order.PaymentStatus == nil || *order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %v", order.PaymentStatus)
	}
	if order.PaymentReference == nil || *order.PaymentReference != "CARD-****1234" {
		t.Fatalf("unexpected reference: %v", order.PaymentReference)
	}
}

func TestCreditCardProcessRequiresCardNumber(t *testing.T) {
	t.Parallel()

	order := &models.Order{OrderNumber: "ORD-20250812-A1B2"}
	err := NewCreditCardStrategy().Process(context.Background(), order, Details{CardNumber: "1234"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBankTransferProcessDerivesReference(t *testing.T) {
	t.Parallel()

	order := &models.Order{OrderNumber: "ORD-20250812-A1B2"}
	if err := NewBankTransferStrategy().Process(context.Background(), order, Details{}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if order.PaymentStatus == nil || *order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending, got %v", order.PaymentStatus)
	}
	if order.PaymentReference == nil || *order.PaymentReference != "BT-ORD-20250812-A1B2" {
		t.Fatalf("unexpected reference: %v", order.PaymentReference)
	}
}

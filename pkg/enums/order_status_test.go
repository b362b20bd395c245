package enums

import "testing"

func TestOrderStatusTerminalStatesRejectTransitions(t *testing.T) {
	t.Parallel()

	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		if !terminal.IsTerminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, target := range validOrderStatuses {
			if terminal.CanTransitionTo(target) {
				t.Fatalf("%s -> %s should be rejected", terminal, target)
			}
		}
	}
}

func TestOrderStatusCancelReachableFromAnyNonTerminal(t *testing.T) {
	t.Parallel()

	for _, status := range validOrderStatuses {
		if status.IsTerminal() {
			continue
		}
		if !status.CanTransitionTo(OrderStatusCancelled) {
			t.Fatalf("%s -> CANCELLED should be allowed", status)
		}
	}
}

func TestOrderStatusForwardOnly(t *testing.T) {
	t.Parallel()

	if !OrderStatusPending.CanTransitionTo(OrderStatusConfirmed) {
		t.Fatal("PENDING -> CONFIRMED should be allowed")
	}
	if !OrderStatusConfirmed.CanTransitionTo(OrderStatusOutForDelivery) {
		t.Fatal("forward skip should be allowed")
	}
	if OrderStatusPreparing.CanTransitionTo(OrderStatusConfirmed) {
		t.Fatal("backwards transition should be rejected")
	}
	if OrderStatusPending.CanTransitionTo(OrderStatusPending) {
		t.Fatal("self transition should be rejected")
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseOrderStatus("READY_FOR_DELIVERY")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if status != OrderStatusReadyForDelivery {
		t.Fatalf("unexpected status: %s", status)
	}
	if _, err := ParseOrderStatus("SHIPPED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

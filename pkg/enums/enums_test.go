package enums

import "testing"

func TestParseOrderStatusUppercases(t *testing.T) {
	got, err := ParseOrderStatus(" paid ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderStatusPaid {
		t.Fatalf("expected PAID, got %s", got)
	}
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatal("expected invalid status error")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusPaid, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestParseUnitTypeAndRole(t *testing.T) {
	if u, err := ParseUnitType("Weight"); err != nil || u != UnitTypeWeight {
		t.Fatalf("expected weight, got %q err=%v", u, err)
	}
	if _, err := ParseUnitType("box"); err == nil {
		t.Fatal("expected invalid unit error")
	}
	if r, err := ParseUserRole("ADMIN"); err != nil || r != UserRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", r, err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected invalid role error")
	}
}

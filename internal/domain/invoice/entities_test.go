package invoice

import (
	"math"
	"testing"
)

func TestComputeTotals(t *testing.T) {
	items := []Item{
		{Position: 1, Description: "Monthly rent", Amount: 1000, TaxRate: 0},
		{Position: 2, Description: "Service charge", Amount: 200, TaxRate: 18},
		{Position: 3, Description: "Parking", Amount: 50.50, TaxRate: 18},
	}

	subtotal, tax, total := ComputeTotals(items)

	if subtotal != 1250.50 {
		t.Fatalf("subtotal = %v, want 1250.50", subtotal)
	}
	// 200*0.18 + 50.50*0.18 = 36 + 9.09
	if math.Abs(tax-45.09) > 0.005 {
		t.Fatalf("tax = %v, want 45.09", tax)
	}
	if math.Abs(total-1295.59) > 0.005 {
		t.Fatalf("total = %v, want 1295.59", total)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	subtotal, tax, total := ComputeTotals(nil)
	if subtotal != 0 || tax != 0 || total != 0 {
		t.Fatalf("empty items: got %v/%v/%v, want zeros", subtotal, tax, total)
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSent, StatusOverdue} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
	for _, s := range []Status{StatusPaid, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestInvoice_FullyPaid_Tolerance(t *testing.T) {
	inv := &Invoice{Total: 1500, AmountPaid: 1499.999, BalanceDue: 0.001}
	if !inv.FullyPaid() {
		t.Fatal("sub-cent residue must count as fully paid")
	}
	inv.BalanceDue = 0.01
	if inv.FullyPaid() {
		t.Fatal("a full cent outstanding is not fully paid")
	}
}

package enums

import "testing"

func TestParseStoreID(t *testing.T) {
	id, err := ParseStoreID(" 2 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != StoreTwo || id.TablePrefix() != "store2_" {
		t.Fatalf("unexpected store %v prefix %q", id, id.TablePrefix())
	}
	for _, raw := range []string{"", "0", "3", "abc"} {
		if _, err := ParseStoreID(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestPaymentTypes(t *testing.T) {
	if _, err := ParsePaymentType("pix"); err != nil {
		t.Fatalf("pix should be valid: %v", err)
	}
	if _, err := ParsePaymentType("cash"); err == nil {
		t.Fatal("expected unknown payment type to fail")
	}
	if !PaymentTypeCash.AllowsChange() || PaymentTypePix.AllowsChange() {
		t.Fatal("only cash and mixed payments hand back change")
	}
}

func TestTableStatusReleasable(t *testing.T) {
	if TableStatusFree.Releasable() || TableStatusOccupied.Releasable() {
		t.Fatal("free and occupied tables are not releasable")
	}
	if !TableStatusAwaitingBill.Releasable() || !TableStatusCleaning.Releasable() {
		t.Fatal("awaiting bill and cleaning tables should be releasable")
	}
}

func TestSaleStatusTerminal(t *testing.T) {
	if SaleStatusOpen.IsTerminal() {
		t.Fatal("open sale is not terminal")
	}
	if !SaleStatusClosed.IsTerminal() || !SaleStatusCancelled.IsTerminal() {
		t.Fatal("closed and cancelled sales are terminal")
	}
}

func TestAttendanceTabOrder(t *testing.T) {
	want := []AttendanceTab{"sales", "orders", "cash", "tables", "history"}
	if len(AttendanceTabs) != len(want) {
		t.Fatalf("unexpected tab count %d", len(AttendanceTabs))
	}
	for i, tab := range want {
		if AttendanceTabs[i] != tab {
			t.Fatalf("tab %d: expected %s got %s", i, tab, AttendanceTabs[i])
		}
	}
	if _, err := ParseAttendanceTab("reports"); err == nil {
		t.Fatal("expected unknown tab to fail")
	}
}

func TestParsePermission(t *testing.T) {
	perm, err := ParsePermission("can_view_cash_register")
	if err != nil || perm != PermissionViewCashRegister {
		t.Fatalf("unexpected parse result %q %v", perm, err)
	}
	if _, err := ParsePermission("can_delete_everything"); err == nil {
		t.Fatal("expected unknown permission to fail")
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func TestSaleMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSaleMetrics(reg)

	m.IncTransition("1", "finalized")
	m.IncTransition("1", "finalized")
	m.AddRevenue("1", "pix", decimal.RequireFromString("30.00"))
	m.AddRevenue("1", "pix", decimal.Zero)
	m.IncCashEntryFailure("1")
	m.IncConflict("1", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "pdv_table_sale_transitions_total", "transition", "finalized"); err != nil || got != 2 {
		t.Fatalf("expected 2 finalized transitions, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pdv_table_sale_revenue_total", "payment_type", "pix"); err != nil || got != 30 {
		t.Fatalf("expected revenue 30, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pdv_cash_entry_failures_total", "store", "1"); err != nil || got != 1 {
		t.Fatalf("expected one cash failure, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "pdv_table_sale_conflicts_total", "operation", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected normalized conflict label, got %f err=%v", got, err)
	}
}

func TestSaleMetricsNilSafe(t *testing.T) {
	var m *SaleMetrics
	m.IncTransition("1", "opened")
	m.AddRevenue("1", "pix", decimal.NewFromInt(1))
	m.IncCashEntryFailure("1")
	m.IncConflict("1", "finalize")

	NewSaleMetrics(nil).IncTransition("1", "opened")
}

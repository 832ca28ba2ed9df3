package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// SaleMetrics records table-sale lifecycle events.
type SaleMetrics struct {
	transitions *prometheus.CounterVec
	revenue     *prometheus.CounterVec
	cashFailed  *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_sale_transitions_total",
		Help:      "Table sale transitions by store and outcome.",
	}, []string{"store", "transition"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_sale_revenue_total",
		Help:      "Total amount of finalized table sales.",
	}, []string{"store", "payment_type"})
	cashFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cash_entry_failures_total",
		Help:      "Cash entries that could not be posted after a sale was finalized.",
	}, []string{"store"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "table_sale_conflicts_total",
		Help:      "Rejected transitions because the table or sale had already moved on.",
	}, []string{"store", "operation"})
	reg.MustRegister(transitions, revenue, cashFailed, conflicts)
	return &SaleMetrics{
		transitions: transitions,
		revenue:     revenue,
		cashFailed:  cashFailed,
		conflicts:   conflicts,
	}
}

// IncTransition counts one lifecycle transition (opened, saved, finalized, cancelled, released).
func (s *SaleMetrics) IncTransition(store, transition string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(store), normalizeLabel(transition)).Inc()
}

// AddRevenue adds a finalized sale total.
func (s *SaleMetrics) AddRevenue(store, paymentType string, amount decimal.Decimal) {
	if s == nil || s.revenue == nil || !amount.IsPositive() {
		return
	}
	s.revenue.WithLabelValues(normalizeLabel(store), normalizeLabel(paymentType)).Add(amount.InexactFloat64())
}

// IncCashEntryFailure counts a swallowed cash entry failure.
func (s *SaleMetrics) IncCashEntryFailure(store string) {
	if s == nil || s.cashFailed == nil {
		return
	}
	s.cashFailed.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncConflict counts a rejected compare-and-set transition.
func (s *SaleMetrics) IncConflict(store, operation string) {
	if s == nil || s.conflicts == nil {
		return
	}
	s.conflicts.WithLabelValues(normalizeLabel(store), normalizeLabel(operation)).Inc()
}

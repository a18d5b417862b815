package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration lifecycle and ledger activity.
type Metrics struct {
	RegistrationsSubmitted prometheus.Counter
	StatusTransitions      *prometheus.CounterVec
	BulkApproveItems       *prometheus.CounterVec
	PermissionDenials      *prometheus.CounterVec
	LedgerEntries          *prometheus.CounterVec
	BulkApproveDuration    prometheus.Histogram
}

// New registers the portal metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "selfreg_registrations_submitted_total",
			Help: "Total number of public registration submissions",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfreg_registration_transitions_total",
			Help: "Registration status transitions by target status and actor kind",
		}, []string{"status", "actor"}),
		BulkApproveItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfreg_bulk_approve_items_total",
			Help: "Bulk approve items by outcome",
		}, []string{"outcome"}),
		PermissionDenials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfreg_permission_denials_total",
			Help: "Actions rejected by the permission gate",
		}, []string{"module", "permission"}),
		LedgerEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfreg_ledger_entries_total",
			Help: "Ledger entries recorded by kind",
		}, []string{"kind"}),
		BulkApproveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "selfreg_bulk_approve_duration_seconds",
			Help:    "Duration of bulk approve requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// The methods below are nil-safe so callers without metrics can skip wiring.

func (m *Metrics) IncSubmitted() {
	if m == nil {
		return
	}
	m.RegistrationsSubmitted.Inc()
}

func (m *Metrics) IncTransition(status, actor string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status, actor).Inc()
}

func (m *Metrics) IncBulkItem(outcome string) {
	if m == nil {
		return
	}
	m.BulkApproveItems.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDenied(module, permission string) {
	if m == nil {
		return
	}
	m.PermissionDenials.WithLabelValues(module, permission).Inc()
}

func (m *Metrics) IncLedgerEntry(kind string) {
	if m == nil {
		return
	}
	m.LedgerEntries.WithLabelValues(kind).Inc()
}

// ObserveBulkApprove records the duration since start.
func (m *Metrics) ObserveBulkApprove(start time.Time) {
	if m == nil {
		return
	}
	m.BulkApproveDuration.Observe(time.Since(start).Seconds())
}

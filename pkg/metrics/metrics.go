package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sync holds the counters fed by the synchronizer event stream.
type Sync struct {
	PivotCreated  prometheus.Counter
	PivotUpdated  prometheus.Counter
	PivotArchived prometheus.Counter
	SyncErrors    prometheus.Counter
	AuthCreated   prometheus.Counter
	AuthDeleted   prometheus.Counter
	PulseCreated  prometheus.Counter
}

func NewSync(reg prometheus.Registerer) *Sync {
	m := &Sync{
		PivotCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_pivot_created_total",
			Help: "Pivot records created from the HR source.",
		}),
		PivotUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_pivot_updated_total",
			Help: "Pivot records updated in place.",
		}),
		PivotArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_pivot_archived_total",
			Help: "Pivot records archived after disappearing from the source.",
		}),
		SyncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_sync_errors_total",
			Help: "Per-identity failures during sync runs.",
		}),
		AuthCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_auth_records_created_total",
			Help: "Authorization rows created.",
		}),
		AuthDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_auth_records_deleted_total",
			Help: "Authorization rows deleted on archival.",
		}),
		PulseCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrbot_pulse_tasks_created_total",
			Help: "Pulse survey tasks created.",
		}),
	}
	reg.MustRegister(
		m.PivotCreated, m.PivotUpdated, m.PivotArchived,
		m.SyncErrors, m.AuthCreated, m.AuthDeleted, m.PulseCreated,
	)
	return m
}

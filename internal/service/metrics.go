package service

import "github.com/prometheus/client_golang/prometheus"

// Upload outcomes recorded in pdfvault_uploads_total.
const (
	outcomeCommitted     = "committed"
	outcomeRejected      = "rejected"
	outcomeQuotaExceeded = "quota_exceeded"
	outcomeStorageError  = "storage_error"
	outcomeMetadataError = "metadata_error"
)

// Metrics holds the file service counters. A nil *Metrics records nothing.
type Metrics struct {
	uploads      *prometheus.CounterVec
	orphaned     prometheus.Counter
	corruptState prometheus.Counter
}

// NewMetrics creates the service counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pdfvault_uploads_total",
				Help: "Upload attempts by final pipeline outcome.",
			},
			[]string{"outcome"},
		),
		orphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfvault_orphaned_blobs_total",
			Help: "Blobs left behind because the compensating delete failed.",
		}),
		corruptState: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdfvault_corrupt_state_total",
			Help: "Reads of file records whose blob is missing.",
		}),
	}

	for _, c := range []prometheus.Collector{m.uploads, m.orphaned, m.corruptState} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) orphanedBlob() {
	if m == nil {
		return
	}
	m.orphaned.Inc()
}

func (m *Metrics) corrupt() {
	if m == nil {
		return
	}
	m.corruptState.Inc()
}

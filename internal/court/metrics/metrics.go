package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EntitiesCreated     *prometheus.CounterVec
	EntitiesRegistered  *prometheus.GaugeVec
	LawsuitsFiled       prometheus.Counter
	VerdictsRecorded    *prometheus.CounterVec
	LanePending         *prometheus.GaugeVec
	CasesDequeued       *prometheus.CounterVec
	AttorneyAssignments *prometheus.CounterVec
	AttorneyPoolSize    prometheus.Gauge
	ApplicantQueueSize  prometheus.Gauge
	OperationDuration   *prometheus.HistogramVec
}

// New registers the court collectors on reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		EntitiesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courthouse_entities_created_total",
			Help: "Total number of entities assigned an identifier, by type",
		}, []string{"type"}),
		EntitiesRegistered: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "courthouse_entities_registered",
			Help: "Entities currently held by the registry, by type",
		}, []string{"type"}),
		LawsuitsFiled: f.NewCounter(prometheus.CounterOpts{
			Name: "courthouse_lawsuits_filed_total",
			Help: "Total number of lawsuits filed or published",
		}),
		VerdictsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courthouse_verdicts_recorded_total",
			Help: "Total number of verdicts, by outcome",
		}, []string{"outcome"}),
		LanePending: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "courthouse_lane_pending_cases",
			Help: "Cases waiting in each judge lane",
		}, []string{"judge"}),
		CasesDequeued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courthouse_cases_dequeued_total",
			Help: "NextCase calls by result (case, empty)",
		}, []string{"result"}),
		AttorneyAssignments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courthouse_attorney_assignments_total",
			Help: "State attorney assignments by result (assigned, exhausted)",
		}, []string{"result"}),
		AttorneyPoolSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "courthouse_attorney_pool_size",
			Help: "State attorneys enrolled in the rotation pool",
		}),
		ApplicantQueueSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "courthouse_applicant_queue_size",
			Help: "Lawyers waiting for state attorney approval",
		}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courthouse_operation_duration_seconds",
			Help:    "Duration of court service operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementEntityCreated(entityType string) {
	m.EntitiesCreated.WithLabelValues(entityType).Inc()
}

func (m *Metrics) SetRegistered(entityType string, n int) {
	m.EntitiesRegistered.WithLabelValues(entityType).Set(float64(n))
}

func (m *Metrics) IncrementLawsuitFiled() {
	m.LawsuitsFiled.Inc()
}

func (m *Metrics) IncrementVerdict(outcome string) {
	m.VerdictsRecorded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetLanePending(judge string, n int) {
	m.LanePending.WithLabelValues(judge).Set(float64(n))
}

// DeleteLane drops the gauge series of a judge whose lane was freed.
func (m *Metrics) DeleteLane(judge string) {
	m.LanePending.DeleteLabelValues(judge)
}

func (m *Metrics) IncrementDequeue(empty bool) {
	result := "case"
	if empty {
		result = "empty"
	}
	m.CasesDequeued.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementAttorneyAssignment(exhausted bool) {
	result := "assigned"
	if exhausted {
		result = "exhausted"
	}
	m.AttorneyAssignments.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRotationSizes(pool, applicants int) {
	m.AttorneyPoolSize.Set(float64(pool))
	m.ApplicantQueueSize.Set(float64(applicants))
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementEntityCreated("judge")
	m.IncrementEntityCreated("judge")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitiesCreated.WithLabelValues("judge")))

	m.SetLanePending("4000001", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LanePending.WithLabelValues("4000001")))
	m.DeleteLane("4000001")
	assert.Equal(t, 0, testutil.CollectAndCount(m.LanePending))

	m.IncrementDequeue(true)
	m.IncrementDequeue(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CasesDequeued.WithLabelValues("empty")))

	m.IncrementAttorneyAssignment(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttorneyAssignments.WithLabelValues("exhausted")))

	m.SetRotationSizes(4, 1)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.AttorneyPoolSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ApplicantQueueSize))

	m.ObserveOperation("file_lawsuit", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

func TestNew_SeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

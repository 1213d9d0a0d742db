package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegistry("spa-booking", prometheus.NewRegistry())

	m.IncCreated()
	m.IncConflict("overlap")
	m.IncConflict("overlap")
	m.IncTransition("pending", "confirmed")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BookingsCreated.WithLabelValues()))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.BookingConflicts.WithLabelValues("overlap")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BookingTransitions.WithLabelValues("pending", "confirmed")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncCreated()
		m.IncConflict("lock_timeout")
		m.IncTransition("confirmed", "cancelled")
		m.IncPublished("booking.created")
		m.IncPublishFailure()
	})
}

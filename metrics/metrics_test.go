package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/metrics"
)

func TestRecorder_CountsPaymentsAndNotifications(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := metrics.New(reg)
	require.NoError(t, err)

	r.Payment(true)
	r.Payment(true)
	r.Payment(false)
	r.Notification(false)
	r.Run()

	// processed + failed payments, failed notifications, runs
	n, err := testutil.GatherAndCount(reg, "payroll_payments_total",
		"payroll_notifications_total", "payroll_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			label := ""
			if len(m.GetLabel()) > 0 {
				label = m.GetLabel()[0].GetValue()
			}
			if c := m.GetCounter(); c != nil {
				values[mf.GetName()+"/"+label] = c.GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["payroll_payments_total/processed"])
	assert.Equal(t, 1.0, values["payroll_payments_total/failed"])
	assert.Equal(t, 1.0, values["payroll_notifications_total/failed"])
	assert.Equal(t, 1.0, values["payroll_runs_total/"])
}

func TestRecorder_HTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := metrics.New(reg)
	require.NoError(t, err)

	r.HTTPRequest("GET", "/api/employees", 200, 15*time.Millisecond)
	r.HTTPRequest("GET", "/api/employees", 404, time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "payroll_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(reg, "payroll_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.Payment(true)
		r.Notification(true)
		r.Run()
		r.HTTPRequest("GET", "/", 200, time.Second)
	})
}

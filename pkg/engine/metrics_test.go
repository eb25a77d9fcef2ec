package engine_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/signalpath/graphengine/pkg/engine"
)

func TestFaultCounterRecordsAndPublishes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := engine.NewMetrics(reg)
	f := engine.NewFaultCounter(m)

	f.Record(3, "boom")
	f.Record(3, "boom again")

	require.Equal(t, 2, f.Count(3))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.True(t, hasMetricFamily(families, "graphengine_render_node_faults_total"))
}

func TestFaultCounterWithNilMetricsIsSafe(t *testing.T) {
	f := engine.NewFaultCounter(nil)
	require.NotPanics(t, func() { f.Record(1, "x") })
	require.Equal(t, 1, f.Count(1))
}

func hasMetricFamily(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

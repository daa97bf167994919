package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNew_GaugesObserveSetValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ActiveJobs.Set(3)
	m.PointsIndexed.Set(128)

	var out dto.Metric
	require.NoError(t, m.ActiveJobs.Write(&out))
	require.Equal(t, float64(3), out.GetGauge().GetValue())

	var points dto.Metric
	require.NoError(t, m.PointsIndexed.Write(&points))
	require.Equal(t, float64(128), points.GetGauge().GetValue())
}

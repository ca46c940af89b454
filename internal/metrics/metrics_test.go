package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Composed.WithLabelValues("compose").Inc()
	m.ValidationFailures.WithLabelValues("invalid_value").Add(2)
	m.Drafts.Set(3)
	m.DraftsEvicted.Inc()

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP chatmsg_drafts Drafts currently held in memory.
# TYPE chatmsg_drafts gauge
chatmsg_drafts 3
# HELP chatmsg_validation_failures_total Rejected builder calls and recipe steps, by error kind.
# TYPE chatmsg_validation_failures_total counter
chatmsg_validation_failures_total{kind="invalid_value"} 2
`), "chatmsg_drafts", "chatmsg_validation_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftsEvicted))
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

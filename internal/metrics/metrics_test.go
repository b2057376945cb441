package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, op, result string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, CartMutations.WithLabelValues(op, result).Write(m))
	return m.GetCounter().GetValue()
}

func TestStateValue(t *testing.T) {
	assert.Equal(t, 0.0, StateValue(gobreaker.StateClosed))
	assert.Equal(t, 1.0, StateValue(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, StateValue(gobreaker.StateOpen))
	assert.Equal(t, -1.0, StateValue(gobreaker.State(42)))
}

func TestCartMutationsCounter(t *testing.T) {
	before := counterValue(t, "add", "ok")
	CartMutations.WithLabelValues("add", "ok").Inc()
	assert.Equal(t, before+1, counterValue(t, "add", "ok"))
}

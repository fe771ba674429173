package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightcast/flightcast/internal/resilience"
)

func TestRegistry_RegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register(resilience.NewClient(resilience.DefaultClientConfig("inference")))

	health := registry.Health("inference")
	require.NotNil(t, health)
	assert.Equal(t, "inference", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.False(t, health.IsDegraded())
	assert.Nil(t, health.LastSuccessAt)
	assert.Nil(t, health.LastFailureAt)
}

func TestRegistry_UnknownClient(t *testing.T) {
	registry := resilience.NewRegistry()
	assert.Nil(t, registry.Health("missing"))

	// Recording against an unknown name is a no-op.
	registry.RecordSuccess("missing")
	registry.RecordFailure("missing", errors.New("boom"))
	assert.Empty(t, registry.All())
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register(resilience.NewClient(resilience.DefaultClientConfig("inference")))

	registry.RecordSuccess("inference")
	registry.RecordFailure("inference", errors.New("connection refused"))

	health := registry.Health("inference")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
	assert.WithinDuration(t, time.Now(), *health.LastFailureAt, time.Second)
	assert.Equal(t, "connection refused", health.LastError)
}

func TestRegistry_AllSortedByName(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register(resilience.NewClient(resilience.DefaultClientConfig("zeta")))
	registry.Register(resilience.NewClient(resilience.DefaultClientConfig("alpha")))

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
}

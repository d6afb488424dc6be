package adapter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCProviderFailover(t *testing.T) {
	_, err := NewRPCProvider("", "")
	assert.Error(t, err)

	single, err := NewRPCProvider("https://rpc.one", "")
	require.NoError(t, err)
	assert.Error(t, single.Failover())

	p, err := NewRPCProvider("https://rpc.one", "https://rpc.two")
	require.NoError(t, err)

	require.NoError(t, p.Failover())
	current, err := p.GetCurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.two", current)
	assert.True(t, p.GetHealth().OnSecondary)

	require.NoError(t, p.Failover())
	current, _ = p.GetCurrentURL()
	assert.Equal(t, "https://rpc.one", current)
}

func TestRPCProviderHealth(t *testing.T) {
	p, err := NewRPCProvider("https://mainnet.infura.io/v3/abc123", "")
	require.NoError(t, err)

	p.RecordSuccess(10 * time.Millisecond)
	p.RecordSuccess(30 * time.Millisecond)
	health := p.GetHealth()
	assert.Equal(t, int64(2), health.TotalRequests)
	assert.Equal(t, int64(20), health.AverageLatencyMs)
	assert.Equal(t, 1.0, health.SuccessRate)
	assert.Equal(t, "https://mainnet.infura.io", health.Endpoint)

	for i := 0; i < 5; i++ {
		p.RecordFailure(errors.New(`Post "https://mainnet.infura.io/v3/abc123": EOF`))
	}
	health = p.GetHealth()
	assert.False(t, health.IsHealthy)
	assert.Equal(t, 5, health.ConsecutiveFails)
	assert.NotContains(t, health.LastError, "abc123")

	p.RecordSuccess(time.Millisecond)
	assert.Equal(t, 0, p.GetHealth().ConsecutiveFails)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://polygon-rpc.com", RedactURL("https://polygon-rpc.com"))
	assert.Equal(t, "https://arb1.arbitrum.io", RedactURL("https://user:pw@arb1.arbitrum.io:443/rpc?key=1"))
	assert.Equal(t, "unparseable endpoint", RedactURL("not a url"))
}

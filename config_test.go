package caseload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legalops/caseload/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, types.DefaultRoleWeights(), cfg.Weights)
	require.Equal(t, 5*time.Second, cfg.LockTimeout)
	require.Equal(t, 2, cfg.LockRetries)
}

func TestSetDefaults_FillsZeroValues(t *testing.T) {
	var cfg Config
	SetDefaults(&cfg)
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultConfig(), cfg)
}

func TestSetDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Weights:     types.RoleWeights{Primary: 2, Secondary: 1, Supporting: 0.5},
		LockTimeout: time.Second,
	}
	SetDefaults(&cfg)
	require.Equal(t, 2.0, cfg.Weights.Primary)
	require.Equal(t, time.Second, cfg.LockTimeout)
	require.Equal(t, 2, cfg.LockRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero primary weight", func(c *Config) { c.Weights.Primary = 0 }},
		{"negative secondary weight", func(c *Config) { c.Weights.Secondary = -0.5 }},
		{"secondary above primary", func(c *Config) { c.Weights.Secondary = 2 }},
		{"zero lock timeout", func(c *Config) { c.LockTimeout = 0 }},
		{"negative lock retries", func(c *Config) { c.LockRetries = -1 }},
		{"zero hook timeout", func(c *Config) { c.HookTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.LockTimeout, time.Second)
}

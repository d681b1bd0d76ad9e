package caseload

import (
	"fmt"
	"time"

	"github.com/legalops/caseload/types"
)

// Config is the configuration for the Engine.
type Config struct {
	// Weights maps assignment roles to their capacity weight.
	// Default: PRIMARY 1.0, SECONDARY 0.5, SUPPORTING 0.
	Weights types.RoleWeights `yaml:"weights"`

	// LockTimeout bounds each attempt to enter a case's critical section.
	// Recommended: 5 seconds.
	LockTimeout time.Duration `yaml:"lockTimeout"`

	// LockRetries is how many times a timed-out lock acquisition is retried
	// before the operation surfaces ErrOperationTimedOut.
	// Recommended: 2.
	LockRetries int `yaml:"lockRetries"`

	// HookTimeout bounds each lifecycle hook invocation. Hooks run in
	// background goroutines; one exceeding this timeout has its context
	// cancelled.
	// Recommended: 5 seconds.
	HookTimeout time.Duration `yaml:"hookTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Weights:     types.DefaultRoleWeights(),
		LockTimeout: 5 * time.Second,
		LockRetries: 2,
		HookTimeout: 5 * time.Second,
	}
}

// TestConfig returns a Config tuned for fast tests: short lock timeouts so
// contention failures surface in milliseconds instead of seconds.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.LockTimeout = 200 * time.Millisecond
	cfg.LockRetries = 1
	cfg.HookTimeout = time.Second
	return cfg
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	zero := types.RoleWeights{}
	if cfg.Weights == zero {
		cfg.Weights = defaults.Weights
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = defaults.LockTimeout
	}
	if cfg.LockRetries == 0 {
		cfg.LockRetries = defaults.LockRetries
	}
	if cfg.HookTimeout == 0 {
		cfg.HookTimeout = defaults.HookTimeout
	}
}

// Validate checks the configuration for invalid values.
//
// Returns:
//   - error: Nil when valid, an error wrapping ErrInvalidConfig otherwise
func (c *Config) Validate() error {
	if c.Weights.Primary <= 0 {
		return fmt.Errorf("%w: primary role weight must be positive, got %v", ErrInvalidConfig, c.Weights.Primary)
	}
	if c.Weights.Secondary < 0 || c.Weights.Supporting < 0 {
		return fmt.Errorf("%w: role weights must not be negative", ErrInvalidConfig)
	}
	if c.Weights.Secondary > c.Weights.Primary {
		return fmt.Errorf("%w: secondary role weight %v exceeds primary %v",
			ErrInvalidConfig, c.Weights.Secondary, c.Weights.Primary)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock timeout must be positive, got %v", ErrInvalidConfig, c.LockTimeout)
	}
	if c.LockRetries < 0 {
		return fmt.Errorf("%w: lock retries must not be negative, got %d", ErrInvalidConfig, c.LockRetries)
	}
	if c.HookTimeout <= 0 {
		return fmt.Errorf("%w: hook timeout must be positive, got %v", ErrInvalidConfig, c.HookTimeout)
	}

	return nil
}

package resilience

import "time"

// CircuitBreakerConfig tunes the breaker guarding the upstream API. The zero
// value means "enabled off, defaults everywhere else" once passed through
// WithDefaults.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// WithDefaults replaces unset or nonsensical fields with the defaults.
// Enabled is left as-is so a zero-value config stays disabled.
func (cfg CircuitBreakerConfig) WithDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}

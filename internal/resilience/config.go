package resilience

import (
	"time"

	"github.com/sells-group/permit-cli/internal/config"
)

// FromRetryConfig builds a write retry policy from pipeline settings.
// Unset fields keep the defaults.
func FromRetryConfig(c config.RetryConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if c.MaxAttempts > 0 {
		p.Attempts = c.MaxAttempts
	}
	if c.InitialBackoffMs > 0 {
		p.BaseDelay = time.Duration(c.InitialBackoffMs) * time.Millisecond
	}
	if c.MaxBackoffMs > 0 {
		p.MaxDelay = time.Duration(c.MaxBackoffMs) * time.Millisecond
	}
	return p
}

// FromBreakerConfig builds a write breaker config from pipeline settings.
func FromBreakerConfig(c config.BreakerConfig) BreakerConfig {
	b := DefaultBreakerConfig()
	if c.FailureThreshold > 0 {
		b.Threshold = c.FailureThreshold
	}
	if c.ResetTimeoutSecs > 0 {
		b.Cooldown = time.Duration(c.ResetTimeoutSecs) * time.Second
	}
	return b
}

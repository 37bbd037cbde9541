package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgclock "github.com/joynr-project/joynr-go/pkg/clock"
)

// Config holds the manager's construction-time knobs.
type Config struct {
	// Clock is the time source every timer is armed against. Defaults
	// to the real system clock; tests inject a *clock.Mock.
	Clock pkgclock.Clock

	// PatternCacheSize bounds the multicast pattern→regexp cache.
	PatternCacheSize int

	// Registerer receives the manager's Prometheus instruments. A nil
	// Registerer falls back to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// TerminateWorkers bounds how many concurrent unregister calls
	// TerminateSubscriptions issues at once. Zero means unbounded.
	TerminateWorkers int
}

// DefaultConfig returns the manager's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Clock:            pkgclock.New(),
		PatternCacheSize: 256,
		Registerer:       prometheus.DefaultRegisterer,
		TerminateWorkers: 0,
	}
}

// Option configures a Manager at construction time.
type Option func(*Config)

// WithClock injects the time source the manager arms every timer
// against. Tests use this to hand in a *clock.Mock.
func WithClock(c pkgclock.Clock) Option {
	return func(cfg *Config) {
		cfg.Clock = c
	}
}

// WithPatternCacheSize bounds the multicast pattern→regexp cache.
func WithPatternCacheSize(size int) Option {
	return func(cfg *Config) {
		cfg.PatternCacheSize = size
	}
}

// WithRegisterer sets the Prometheus registerer the manager's metrics
// attach to.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cfg *Config) {
		cfg.Registerer = reg
	}
}

// WithTerminateWorkers bounds the concurrency of
// TerminateSubscriptions.
func WithTerminateWorkers(n int) Option {
	return func(cfg *Config) {
		cfg.TerminateWorkers = n
	}
}

// Package manager implements the client-side subscription manager:
// registry, request dispatch, reply correlation, missed-publication
// scheduling, publication routing, and shutdown/terminate.
package manager

import (
	"sync/atomic"

	pkgclock "github.com/joynr-project/joynr-go/pkg/clock"
	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var managerLogger = log.Logger("subscription/manager")

// Manager owns the lifecycle of every outgoing subscription: it is
// the SubscriptionManager. Safe for concurrent use from multiple
// goroutines; callbacks for a given subscription id are never invoked
// concurrently with each other, and a reply, a publication, a
// missed-publication alert, and a timeout for the same id are always
// strictly ordered against each other, because every path that reads
// state and notifies a listener for an id does so under that id's
// per-subscription lock (registry.withSubscriptionLock).
type Manager struct {
	dispatcher subscription.Dispatcher
	reg        *registry
	cfg        *Config
	metrics    *metrics

	// started latches false on Shutdown; every register* call checks
	// it first and returns ShutdownError once tripped.
	started atomic.Bool
}

// New constructs a Manager that dispatches through d, ready to accept
// registrations immediately.
func New(d subscription.Dispatcher, opts ...Option) *Manager {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = pkgclock.New()
	}

	m := &Manager{
		dispatcher: d,
		reg:        newRegistry(cfg.PatternCacheSize),
		cfg:        cfg,
		metrics:    newMetrics(cfg.Registerer),
	}
	m.started.Store(true)
	managerLogger.Info("subscription manager started")
	return m
}

// Stats reports read-only counts useful for introspection and tests:
// open subscription count, open multicast pattern count, and pending
// waiter count.
func (m *Manager) Stats() (openSubscriptions, multicastPatterns, pendingWaiters int) {
	s := m.reg.stats()
	return s.OpenSubscriptions, s.MulticastPatterns, s.PendingWaiters
}

// HasOpenSubscriptions reports whether the registry's info, listener,
// timer, or waiter maps hold any entry.
func (m *Manager) HasOpenSubscriptions() bool {
	return m.reg.hasOpenSubscriptions()
}

// HasMulticastSubscriptions reports whether the pattern→subscribers
// map is non-empty.
func (m *Manager) HasMulticastSubscriptions() bool {
	return m.reg.hasMulticastSubscriptions()
}

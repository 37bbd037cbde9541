package manager

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var lifecycleLogger = log.Logger("subscription/lifecycle")

// UnregisterSubscription stops an active subscription: it emits a
// subscription-stop (or, for a multicast subscription, a
// multicast-subscription-stop) to the Dispatcher and then cleans up
// the registry entry, regardless of whether the send succeeded.
// Returns NotFoundError if id is not on file.
func (m *Manager) UnregisterSubscription(ctx context.Context, id subscription.ID, qos subscription.QoS) error {
	if _, ok := m.reg.info(id); !ok {
		return &subscription.NotFoundError{SubscriptionID: id}
	}

	var sendErr error
	var didCleanup bool
	m.reg.withSubscriptionLock(id, func() {
		info, ok := m.reg.info(id)
		if !ok {
			// A concurrent reply-error, timeout, or another Unregister
			// call for the same id already cleaned this up.
			return
		}

		stop := subscription.SubscriptionStop{SubscriptionID: id}
		if info.MulticastID != "" {
			sendErr = m.dispatcher.SendMulticastSubscriptionStop(ctx, info.ProxyID, info.ProviderDiscoveryEntry, info.MulticastID, stop)
		} else {
			sendErr = m.dispatcher.SendSubscriptionStop(ctx, info.ProxyID, info.ProviderDiscoveryEntry, stop)
		}

		m.reg.cleanup(id)
		didCleanup = true
		if info.MulticastID != "" {
			m.metrics.multicastPatterns.Set(float64(m.reg.stats().MulticastPatterns))
		}
	})
	if didCleanup {
		m.metrics.openSubscriptions.Dec()
	}
	return sendErr
}

// TerminateSubscriptions unregisters every subscription currently
// tracked, concurrently, and aggregates every non-nil error from the
// individual stops with multierr. If timeoutMs > 0 and the deadline
// elapses before every stop completes, it returns a TimeoutError
// wrapping whatever errors had already been collected; the still-
// running unregisters keep running with the expired context and are
// no longer waited on.
// timeoutMs == 0 disables the deadline.
func (m *Manager) TerminateSubscriptions(ctx context.Context, timeoutMs int64) error {
	ids := m.reg.snapshotIDs()
	if len(ids) == 0 {
		return nil
	}

	if timeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, msToDuration(timeoutMs))
		defer cancel()
	}

	sem := m.terminateSemaphore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	var combined error

	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := m.UnregisterSubscription(ctx, id, subscription.QoS{}); err != nil {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return combined
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		return &subscription.TimeoutError{Message: "terminate deadline elapsed", Cause: combined}
	}
}

func (m *Manager) terminateSemaphore() chan struct{} {
	if m.cfg.TerminateWorkers <= 0 {
		return nil
	}
	return make(chan struct{}, m.cfg.TerminateWorkers)
}

// Shutdown cancels every publication-check timer, fails every pending
// reply waiter with ShutdownError, clears all registry state, and
// latches the manager closed: every subsequent register* call returns
// ShutdownError. Idempotent.
func (m *Manager) Shutdown() error {
	if !m.started.CompareAndSwap(true, false) {
		return nil
	}
	lifecycleLogger.Info("subscription manager shutting down")
	m.reg.drain(&subscription.ShutdownError{})
	m.metrics.openSubscriptions.Set(0)
	m.metrics.multicastPatterns.Set(0)
	return nil
}

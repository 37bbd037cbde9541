package manager

import (
	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var correlatorLogger = log.Logger("subscription/correlator")

// HandleSubscriptionReply matches an incoming reply to the pending
// registration it completes, resolves that registration exactly once,
// and notifies the listener. A reply with neither a waiter nor a
// listener on file is a late reply after unsubscribe, expected and not
// logged as a fault.
func (m *Manager) HandleSubscriptionReply(reply subscription.SubscriptionReply) {
	var didCleanup bool
	m.reg.withSubscriptionLock(reply.SubscriptionID, func() {
		l := m.reg.listener(reply.SubscriptionID)
		w := m.reg.takeWaiter(reply.SubscriptionID)
		if w == nil && l == nil {
			correlatorLogger.Debug("dropping reply for unknown subscription", "subscriptionId", reply.SubscriptionID)
			return
		}

		if w != nil {
			m.observeReplyLatency(w)
		}

		if reply.Error != nil {
			info, _ := m.reg.info(reply.SubscriptionID)
			if w != nil {
				w.resolve(reply.Error)
			}
			if l != nil && l.OnError != nil {
				safeCall(correlatorLogger, "onError", func() { l.OnError(reply.Error) })
			}
			m.reg.cleanup(reply.SubscriptionID)
			didCleanup = true
			if info != nil && info.MulticastID != "" {
				m.metrics.multicastPatterns.Set(float64(m.reg.stats().MulticastPatterns))
			}
			return
		}

		if w != nil {
			w.resolve(nil)
		}
		if l != nil && l.OnSubscribed != nil {
			safeCall(correlatorLogger, "onSubscribed", func() { l.OnSubscribed(reply.SubscriptionID) })
		}
		// Info and listener remain: publications for this subscription
		// are still expected.
	})
	if didCleanup {
		m.metrics.openSubscriptions.Dec()
	}
}

func (m *Manager) observeReplyLatency(w *waiter) {
	if w.armedAtMs == 0 {
		return
	}
	elapsedMs := m.cfg.Clock.Now().UnixMilli() - w.armedAtMs
	if elapsedMs < 0 {
		return
	}
	m.metrics.replyLatencySeconds.Observe(float64(elapsedMs) / 1000.0)
}

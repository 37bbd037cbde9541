package manager

import (
	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var routerLogger = log.Logger("subscription/router")

// HandlePublication routes one unicast publication to the listener
// registered for its subscription id. An id the registry has no
// record of raises UnknownSubscriptionError rather than creating
// state — unicast publications must never manufacture a subscription.
func (m *Manager) HandlePublication(p subscription.SubscriptionPublication) error {
	var unknown bool
	m.reg.withSubscriptionLock(p.SubscriptionID, func() {
		if !m.reg.touchLastPublication(p.SubscriptionID, m.cfg.Clock.Now().UnixMilli()) {
			unknown = true
			return
		}

		l := m.reg.listener(p.SubscriptionID)
		if l == nil {
			return
		}

		if p.Error != nil {
			if l.OnError != nil {
				safeCall(routerLogger, "onError", func() { l.OnError(p.Error) })
			} else {
				routerLogger.Warn("dropping publication error, no onError set", "subscriptionId", p.SubscriptionID)
			}
			// Not terminal: the provider may still be publishing; only
			// an explicit unsubscribe or a shutdown tears this down.
			return
		}

		if l.OnReceive != nil {
			safeCall(routerLogger, "onReceive", func() { l.OnReceive(p.Response) })
		}
	})
	if unknown {
		return &subscription.UnknownSubscriptionError{SubscriptionID: p.SubscriptionID}
	}
	return nil
}

// HandleMulticastPublication fans a multicast publication out to
// every subscriber whose compiled pattern matches p.MulticastID. It
// never updates LastPublicationTime: multicasts do not feed the
// missed-publication watchdog. A multicastId matching no registered
// pattern raises UnknownMulticastError.
func (m *Manager) HandleMulticastPublication(p subscription.MulticastPublication) error {
	patterns := m.reg.patternsSnapshot()
	matched := false

	for pattern, ids := range patterns {
		cp, err := m.reg.getOrCompile(pattern)
		if err != nil {
			routerLogger.Warn("skipping unparseable multicast pattern", "pattern", pattern, "error", err)
			continue
		}
		if !cp.match(p.MulticastID) {
			continue
		}
		matched = true
		for _, id := range ids {
			id := id
			m.reg.withSubscriptionLock(id, func() {
				l := m.reg.listener(id)
				if l == nil {
					return
				}
				if p.Error != nil {
					if l.OnError != nil {
						safeCall(routerLogger, "onError", func() { l.OnError(p.Error) })
					} else {
						routerLogger.Warn("dropping multicast publication error, no onError set", "subscriptionId", id)
					}
					return
				}
				if l.OnReceive != nil {
					safeCall(routerLogger, "onReceive", func() { l.OnReceive(p.Response) })
				}
			})
		}
	}

	if !matched {
		return &subscription.UnknownMulticastError{MulticastID: p.MulticastID}
	}
	return nil
}

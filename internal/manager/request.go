package manager

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var requestLogger = log.Logger("subscription/request")

// AttributeSubscriptionParams gathers the arguments to
// RegisterAttributeSubscription. SubscriptionID is optional: an empty
// value gets a fresh one generated.
type AttributeSubscriptionParams struct {
	ProxyID        string
	Entry          subscription.ProviderDiscoveryEntry
	AttributeName  string
	AttributeType  string
	QoS            subscription.QoS
	SubscriptionID subscription.ID
	Listener       subscription.Listener
}

// BroadcastSubscriptionParams gathers the arguments to
// RegisterBroadcastSubscription. Selective true emits a filtered
// unicast request; false constructs a multicastId from Entry's
// participant id, BroadcastName, and Partitions and emits a multicast
// request instead.
type BroadcastSubscriptionParams struct {
	ProxyID          string
	Entry            subscription.ProviderDiscoveryEntry
	BroadcastName    string
	Selective        bool
	Partitions       []string
	FilterParameters map[string]string
	QoS              subscription.QoS
	SubscriptionID   subscription.ID
	Listener         subscription.Listener
}

// Registration is the handle returned by every register* call: an id
// assigned synchronously, and a Done channel that receives the
// registration's single completion — nil on success, or the error
// that failed it (reply error, TTL, or shutdown).
type Registration struct {
	ID   subscription.ID
	Done <-chan error
}

func newSubscriptionID(supplied subscription.ID) subscription.ID {
	if supplied != "" {
		return supplied
	}
	return subscription.ID(uuid.New().String())
}

// RegisterAttributeSubscription starts an attribute subscription.
// Fails synchronously with BadInputError if AttributeName or
// AttributeType is empty, or with ShutdownError if the manager has
// been shut down. Warns (does not fail) when OnReceive or OnError is
// nil on the listener.
func (m *Manager) RegisterAttributeSubscription(ctx context.Context, p AttributeSubscriptionParams) (*Registration, error) {
	if !m.started.Load() {
		return nil, &subscription.ShutdownError{}
	}
	if strings.TrimSpace(p.AttributeName) == "" || strings.TrimSpace(p.AttributeType) == "" {
		return nil, &subscription.BadInputError{Message: "attributeName and attributeType are required"}
	}
	warnMissingCallbacks(p.SubscriptionID, &p.Listener)

	p.QoS.Normalize()
	id := newSubscriptionID(p.SubscriptionID)
	now := m.cfg.Clock.Now().UnixMilli()
	ttl := p.QoS.EffectiveTTL(now)

	info := &subscription.Info{
		ProxyID:                p.ProxyID,
		ProviderDiscoveryEntry: p.Entry,
		QoS:                    p.QoS,
		SubscribedToName:       p.AttributeName,
		Kind:                   subscription.KindAttribute,
	}
	m.reg.put(id, info, &p.Listener)
	m.armReplyWaiter(id, ttl)
	m.armMissedPublicationTimer(id, p.QoS.AlertAfterIntervalMs)
	m.metrics.openSubscriptions.Inc()

	req := subscription.SubscriptionRequest{
		SubscriptionID:   id,
		SubscribedToName: p.AttributeName,
		QoS:              p.QoS,
	}
	if err := m.dispatcher.SendSubscriptionRequest(ctx, p.ProxyID, p.Entry, req); err != nil {
		// Attribute registration defers cleanup to the reply-TTL: a
		// send failure surfaces through the registration completion,
		// but the state stays live in case the provider still acks.
		requestLogger.Warn("attribute subscription send failed, deferring to TTL", "subscriptionId", id, "error", err)
		return &Registration{ID: id, Done: m.completionFor(id, err)}, nil
	}

	return &Registration{ID: id, Done: m.waiterDone(id)}, nil
}

// RegisterBroadcastSubscription starts a selective or non-selective
// (multicast) broadcast subscription depending on p.Selective. Fails
// synchronously with BadInputError if BroadcastName is empty, or with
// ShutdownError if the manager has been shut down.
func (m *Manager) RegisterBroadcastSubscription(ctx context.Context, p BroadcastSubscriptionParams) (*Registration, error) {
	if !m.started.Load() {
		return nil, &subscription.ShutdownError{}
	}
	if strings.TrimSpace(p.BroadcastName) == "" {
		return nil, &subscription.BadInputError{Message: "broadcastName is required"}
	}
	warnMissingCallbacks(p.SubscriptionID, &p.Listener)

	id := newSubscriptionID(p.SubscriptionID)
	now := m.cfg.Clock.Now().UnixMilli()
	ttl := p.QoS.EffectiveTTL(now)

	if p.Selective {
		return m.registerSelectiveBroadcast(ctx, id, ttl, p)
	}
	return m.registerMulticastBroadcast(ctx, id, ttl, p)
}

func (m *Manager) registerSelectiveBroadcast(ctx context.Context, id subscription.ID, ttl int64, p BroadcastSubscriptionParams) (*Registration, error) {
	info := &subscription.Info{
		ProxyID:                p.ProxyID,
		ProviderDiscoveryEntry: p.Entry,
		QoS:                    p.QoS,
		SubscribedToName:       p.BroadcastName,
		Kind:                   subscription.KindBroadcastSelective,
	}
	m.reg.put(id, info, &p.Listener)
	m.armReplyWaiter(id, ttl)
	m.metrics.openSubscriptions.Inc()

	req := subscription.BroadcastSubscriptionRequest{
		SubscriptionID:   id,
		SubscribedToName: p.BroadcastName,
		QoS:              p.QoS,
		FilterParameters: p.FilterParameters,
	}
	if err := m.dispatcher.SendBroadcastSubscriptionRequest(ctx, p.ProxyID, p.Entry, req); err != nil {
		// Selective broadcast failures fail the registration and clean
		// up immediately rather than waiting on the TTL.
		m.reg.withSubscriptionLock(id, func() {
			if p.Listener.OnError != nil {
				safeCall(requestLogger, "onError", func() { p.Listener.OnError(err) })
			}
			w := m.reg.takeWaiter(id)
			if w != nil {
				w.resolve(err)
			}
			m.reg.cleanup(id)
		})
		m.metrics.openSubscriptions.Dec()
		return &Registration{ID: id, Done: closedDone(err)}, nil
	}

	return &Registration{ID: id, Done: m.waiterDone(id)}, nil
}

func (m *Manager) registerMulticastBroadcast(ctx context.Context, id subscription.ID, ttl int64, p BroadcastSubscriptionParams) (*Registration, error) {
	multicastID := buildMulticastID(p.Entry.ParticipantID, p.BroadcastName, p.Partitions)

	info := &subscription.Info{
		ProxyID:                p.ProxyID,
		ProviderDiscoveryEntry: p.Entry,
		QoS:                    p.QoS,
		SubscribedToName:       p.BroadcastName,
		MulticastID:            multicastID,
		Kind:                   subscription.KindBroadcastMulticast,
	}
	m.reg.put(id, info, &p.Listener)
	m.reg.addPattern(id, multicastID)
	m.armReplyWaiter(id, ttl)
	m.metrics.openSubscriptions.Inc()
	m.metrics.multicastPatterns.Set(float64(m.reg.stats().MulticastPatterns))

	req := subscription.MulticastSubscriptionRequest{
		SubscriptionID:   id,
		MulticastID:      multicastID,
		SubscribedToName: p.BroadcastName,
		QoS:              p.QoS,
	}
	if err := m.dispatcher.SendMulticastSubscriptionRequest(ctx, p.ProxyID, p.Entry, req); err != nil {
		requestLogger.Warn("multicast subscription send failed, deferring to TTL", "subscriptionId", id, "error", err)
		return &Registration{ID: id, Done: m.completionFor(id, err)}, nil
	}

	return &Registration{ID: id, Done: m.waiterDone(id)}, nil
}

// buildMulticastID joins the provider's participant id, the broadcast
// name, and any partitions into a multicastId string
// (participantId/broadcastName[/partition]*).
func buildMulticastID(participantID, broadcastName string, partitions []string) string {
	parts := append([]string{participantID, broadcastName}, partitions...)
	return strings.Join(parts, "/")
}

func warnMissingCallbacks(id subscription.ID, l *subscription.Listener) {
	if l.OnReceive == nil {
		requestLogger.Warn("subscription registered without onReceive", "subscriptionId", id)
	}
	if l.OnError == nil {
		requestLogger.Warn("subscription registered without onError", "subscriptionId", id)
	}
}

// armReplyWaiter installs a PendingReplyWaiter for id armed to fail
// the registration with TimeoutError after ttlMs elapses without a
// reply.
func (m *Manager) armReplyWaiter(id subscription.ID, ttlMs int64) {
	w := newWaiter()
	w.armedAtMs = m.cfg.Clock.Now().UnixMilli()
	w.timer = m.cfg.Clock.AfterFunc(msToDuration(ttlMs), func() {
		m.timeoutWaiter(id)
	})
	m.reg.armWaiter(id, w)
}

func (m *Manager) timeoutWaiter(id subscription.ID) {
	var didCleanup bool
	m.reg.withSubscriptionLock(id, func() {
		w := m.reg.takeWaiter(id)
		if w == nil {
			// Reply (or shutdown) already resolved this waiter.
			return
		}
		err := &subscription.TimeoutError{Message: "subscription reply not received before TTL"}
		w.resolve(err)
		if l := m.reg.listener(id); l != nil && l.OnError != nil {
			safeCall(requestLogger, "onError", func() { l.OnError(err) })
		}
		m.reg.cleanup(id)
		didCleanup = true
	})
	if didCleanup {
		m.metrics.openSubscriptions.Dec()
	}
}

// waiterDone returns the Done channel for id's pending waiter, or a
// pre-closed channel reporting ShutdownError if it has already been
// resolved and removed (e.g. by a race with shutdown).
func (m *Manager) waiterDone(id subscription.ID) <-chan error {
	m.reg.mu.RLock()
	w, ok := m.reg.waiters[id]
	m.reg.mu.RUnlock()
	if !ok {
		return closedDone(&subscription.ShutdownError{})
	}
	return w.done
}

// completionFor returns a Done channel that already carries err,
// without disturbing the live waiter (used when a synchronous send
// failure should surface through the registration completion but the
// reply-TTL policy still owns cleanup).
func (m *Manager) completionFor(id subscription.ID, err error) <-chan error {
	return closedDone(err)
}

func closedDone(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	return ch
}

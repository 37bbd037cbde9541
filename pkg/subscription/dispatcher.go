package subscription

import "context"

// Dispatcher is the opaque sink the manager hands outgoing wire
// traffic to, and the only collaborator it depends on outside its own
// package. A Dispatcher implementation owns serialization, transport,
// discovery/arbitration and the routing table; the manager never
// inspects any of that, and never reads dispatcher state back other
// than the error a Send call returns.
//
// Implementations must be safe for concurrent use: the manager may
// call any method from any goroutine handling a registration or an
// unregister.
type Dispatcher interface {
	// SendSubscriptionRequest starts an attribute subscription at the
	// provider identified by entry.
	SendSubscriptionRequest(ctx context.Context, proxyID string, entry ProviderDiscoveryEntry, req SubscriptionRequest) error

	// SendBroadcastSubscriptionRequest starts a selective broadcast
	// subscription.
	SendBroadcastSubscriptionRequest(ctx context.Context, proxyID string, entry ProviderDiscoveryEntry, req BroadcastSubscriptionRequest) error

	// SendMulticastSubscriptionRequest starts a non-selective broadcast
	// subscription.
	SendMulticastSubscriptionRequest(ctx context.Context, proxyID string, entry ProviderDiscoveryEntry, req MulticastSubscriptionRequest) error

	// SendSubscriptionStop stops a unicast (attribute or selective
	// broadcast) subscription.
	SendSubscriptionStop(ctx context.Context, proxyID string, entry ProviderDiscoveryEntry, stop SubscriptionStop) error

	// SendMulticastSubscriptionStop stops a multicast subscription.
	// multicastID travels alongside stop rather than inside it, since
	// a multicast stop is keyed by multicastId at the provider even
	// though the manager still tracks it by subscriptionId locally.
	SendMulticastSubscriptionStop(ctx context.Context, proxyID string, entry ProviderDiscoveryEntry, multicastID string, stop SubscriptionStop) error
}

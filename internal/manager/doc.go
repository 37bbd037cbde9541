// Package manager implements the SubscriptionManager: the client-side
// machinery that owns the lifecycle of every outgoing subscription.
//
// # Responsibilities
//
//   - registry.go — in-memory state for every active subscription:
//     info, listener, publication-check timer, pending reply waiter.
//   - request.go — builds and dispatches attribute, selective-broadcast,
//     and multicast-broadcast subscription requests.
//   - correlator.go — matches an incoming subscription reply to its
//     pending registration and resolves it exactly once.
//   - scheduler.go — arms and re-arms the missed-publication timer per
//     subscription.
//   - router.go — routes incoming unicast and multicast publications to
//     the right listener.
//   - multicast.go — compiles multicastId patterns into anchored
//     regexps, cached with an LRU.
//   - lifecycle.go — unregister, concurrent terminate, and shutdown.
//
// A Manager is constructed with New and is immediately ready to accept
// registrations; there is no separate Start.
package manager

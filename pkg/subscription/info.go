package subscription

// Info is the registry's record for one active subscription: enough
// to rebuild an unregister or a publication-check without consulting
// the original request again.
type Info struct {
	ProxyID                string
	ProviderDiscoveryEntry ProviderDiscoveryEntry
	QoS                    QoS

	// LastPublicationTime is unix-ms, 0 meaning "never published to".
	// Updated only for unicast publications; multicast deliveries never
	// touch it.
	LastPublicationTime int64

	// MulticastID is non-empty iff Kind == KindBroadcastMulticast.
	MulticastID string

	SubscribedToName string
	Kind             Kind
}

// Listener holds the three optional callbacks a caller supplies at
// registration. All three are nil-checked before invocation; a caller
// that omits OnReceive/OnError gets a warning logged at registration
// time, not a synchronous error.
type Listener struct {
	OnReceive    func(payload any)
	OnError      func(err error)
	OnSubscribed func(id ID)
}

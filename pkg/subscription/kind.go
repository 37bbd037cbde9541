package subscription

// Kind distinguishes the three subscription flavors the manager
// tracks; each drives different registration and scheduling behavior.
type Kind int

const (
	// KindAttribute is a subscription to a single provider attribute
	// (on-change, on-change-with-keepalive, or periodic).
	KindAttribute Kind = iota

	// KindBroadcastSelective is a per-consumer filterable broadcast
	// subscription, delivered as unicast publications.
	KindBroadcastSelective

	// KindBroadcastMulticast is a non-selective broadcast subscription
	// addressed by a multicastId, delivered as multicast publications.
	KindBroadcastMulticast
)

func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindBroadcastSelective:
		return "broadcast-selective"
	case KindBroadcastMulticast:
		return "broadcast-multicast"
	default:
		return "unknown"
	}
}

package subscription

// The types below are the wire-level DTOs exchanged with a Dispatcher.
// Their field sets are semantic contracts; the actual byte encoding is
// owned by the serialization layer this module never sees.

// SubscriptionRequest asks a provider to start an attribute
// subscription.
type SubscriptionRequest struct {
	SubscriptionID   ID
	SubscribedToName string
	QoS              QoS
}

// BroadcastSubscriptionRequest asks a provider to start a selective
// broadcast subscription, filtered by FilterParameters.
type BroadcastSubscriptionRequest struct {
	SubscriptionID   ID
	SubscribedToName string
	QoS              QoS
	FilterParameters map[string]string
}

// MulticastSubscriptionRequest asks a provider to start a
// non-selective broadcast subscription addressed by MulticastID.
type MulticastSubscriptionRequest struct {
	SubscriptionID   ID
	MulticastID      string
	SubscribedToName string
	QoS              QoS
}

// SubscriptionStop tells a provider to stop an existing subscription.
// For a multicast subscription, the multicastId travels as a
// side-channel argument on the Dispatcher call rather than as a
// struct field (see Dispatcher.SendMulticastSubscriptionStop).
type SubscriptionStop struct {
	SubscriptionID ID
}

// SubscriptionReply is the provider's acknowledgement (or rejection)
// of a subscription request.
type SubscriptionReply struct {
	SubscriptionID ID
	Error          error
}

// SubscriptionPublication carries one unicast attribute or selective
// broadcast delivery, or an error in place of a value.
type SubscriptionPublication struct {
	SubscriptionID ID
	Response       any
	Error          error
}

// MulticastPublication carries one multicast broadcast delivery,
// addressed by MulticastID rather than by subscription id; the router
// fans it out to every subscriber whose pattern matches.
type MulticastPublication struct {
	MulticastID string
	Response    any
	Error       error
}

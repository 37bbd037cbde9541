package subscription

import "fmt"

// BadInputError reports a registration call missing a required field.
type BadInputError struct {
	Message string
}

func (e *BadInputError) Error() string { return "bad input: " + e.Message }

// NotFoundError reports an unregister for an id the registry does not
// know about.
type NotFoundError struct {
	SubscriptionID ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("subscription %s not found", e.SubscriptionID)
}

// ShutdownError reports an operation issued after the manager has
// been shut down: any pending waiter is failed with this, and any
// subsequent register* call returns it synchronously.
type ShutdownError struct{}

func (e *ShutdownError) Error() string { return "subscription manager is shut down" }

// TimeoutError reports a TTL that elapsed before a subscription reply
// arrived, or a terminate deadline that elapsed before every
// subscription stopped.
type TimeoutError struct {
	Message string
	Cause   error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// PublicationMissedError is raised by the missed-publication
// scheduler when alertAfterIntervalMs elapses with no publication.
type PublicationMissedError struct {
	SubscriptionID ID
}

func (e *PublicationMissedError) Error() string {
	return fmt.Sprintf("no publication received for subscription %s within the alert window", e.SubscriptionID)
}

// UnknownSubscriptionError reports a unicast publication addressed to
// an id the registry has no record of. This indicates a
// protocol fault upstream, not a caller mistake.
type UnknownSubscriptionError struct {
	SubscriptionID ID
}

func (e *UnknownSubscriptionError) Error() string {
	return fmt.Sprintf("unknown subscription %s", e.SubscriptionID)
}

// UnknownMulticastError reports a multicast publication whose
// multicastId matched no registered pattern.
type UnknownMulticastError struct {
	MulticastID string
}

func (e *UnknownMulticastError) Error() string {
	return fmt.Sprintf("no subscriber pattern matches multicast id %s", e.MulticastID)
}

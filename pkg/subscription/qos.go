package subscription

// QoS carries the timing contract negotiated for one subscription.
// Not every field applies to every subscription kind: MinIntervalMs is
// attribute-on-change only, PeriodMs is periodic-attribute only, and
// MaxIntervalMs/AlertAfterIntervalMs apply to on-change-with-keepalive
// attribute subscriptions. Broadcast subscriptions ignore the interval
// fields entirely; the manager never schedules missed-publication
// timers for them.
type QoS struct {
	// ExpiryDateMs is the absolute unix-ms deadline after which the
	// subscription is no longer renewed. NoExpiryDateMs means "never".
	ExpiryDateMs int64

	// PublicationTTLMs bounds how long a single publication remains
	// valid in flight; owned by the wire layer, threaded through
	// unchanged.
	PublicationTTLMs int64

	// MinIntervalMs is the minimum spacing between two publications of
	// an on-change attribute subscription.
	MinIntervalMs int64

	// MaxIntervalMs is the heartbeat upper bound for an
	// on-change-with-keepalive attribute subscription. Clamped to
	// [MinMaxIntervalMs, MaxMaxIntervalMs] and raised to MinIntervalMs
	// if smaller; see Normalize.
	MaxIntervalMs int64

	// PeriodMs is the fixed publication period for a periodic
	// attribute subscription.
	PeriodMs int64

	// AlertAfterIntervalMs is the maximum quiet window before the
	// scheduler raises a PublicationMissedError. Zero disables
	// missed-publication alerting.
	AlertAfterIntervalMs int64
}

// QoS constants, bit-exact with the values callers and tests compare
// against.
const (
	// NoExpiryDateMs marks a QoS with no expiry: the subscription is
	// renewed indefinitely.
	NoExpiryDateMs = int64(0)

	MinMaxIntervalMs     = int64(50)
	MaxMaxIntervalMs     = int64(2_592_000_000) // 30 days
	DefaultMaxIntervalMs = int64(60_000)

	MaxAlertAfterIntervalMs     = int64(2_592_000_000) // 30 days
	DefaultAlertAfterIntervalMs = int64(0)             // never

	// MaxMessagingTTLMs caps the effective TTL computed for every
	// registration, regardless of how far out ExpiryDateMs sits.
	MaxMessagingTTLMs = int64(2_592_000_000) // 30 days
)

// Normalize clamps MaxIntervalMs into [MinMaxIntervalMs,
// MaxMaxIntervalMs] and then raises it to MinIntervalMs if it is still
// smaller, matching the on-change-with-keepalive contract. It then
// clamps AlertAfterIntervalMs to MaxAlertAfterIntervalMs and, unless
// it is 0 (never alert), raises it to whichever of MaxIntervalMs
// (on-change-with-keepalive) or PeriodMs (periodic) it still falls
// short of — an alert window shorter than the cadence it watches would
// fire spurious PublicationMissedErrors even while the provider honors
// its heartbeat or period. Called once by the request builder before a
// QoS is stored in the registry.
func (q *QoS) Normalize() {
	if q.MaxIntervalMs < MinMaxIntervalMs {
		q.MaxIntervalMs = MinMaxIntervalMs
	}
	if q.MaxIntervalMs > MaxMaxIntervalMs {
		q.MaxIntervalMs = MaxMaxIntervalMs
	}
	if q.MaxIntervalMs < q.MinIntervalMs {
		q.MaxIntervalMs = q.MinIntervalMs
	}

	if q.AlertAfterIntervalMs > MaxAlertAfterIntervalMs {
		q.AlertAfterIntervalMs = MaxAlertAfterIntervalMs
	}
	if q.AlertAfterIntervalMs != 0 {
		if q.AlertAfterIntervalMs < q.MaxIntervalMs {
			q.AlertAfterIntervalMs = q.MaxIntervalMs
		}
		if q.PeriodMs > 0 && q.AlertAfterIntervalMs < q.PeriodMs {
			q.AlertAfterIntervalMs = q.PeriodMs
		}
	}
}

// EffectiveTTL computes min(ExpiryDateMs-now, MaxMessagingTTLMs), or
// MaxMessagingTTLMs when the QoS carries no expiry.
func (q *QoS) EffectiveTTL(nowMs int64) int64 {
	if q.ExpiryDateMs == NoExpiryDateMs {
		return MaxMessagingTTLMs
	}
	ttl := q.ExpiryDateMs - nowMs
	if ttl > MaxMessagingTTLMs {
		return MaxMessagingTTLMs
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

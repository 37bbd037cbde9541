package manager

import (
	"github.com/joynr-project/joynr-go/pkg/log"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

var schedulerLogger = log.Logger("subscription/scheduler")

// armMissedPublicationTimer schedules the first publication-check
// timer for id when alertAfterIntervalMs > 0 (the Armed state).
// alertAfterIntervalMs == 0 is Idle: no timer is ever scheduled.
func (m *Manager) armMissedPublicationTimer(id subscription.ID, alertAfterIntervalMs int64) {
	if alertAfterIntervalMs <= 0 {
		return
	}
	m.scheduleCheck(id, alertAfterIntervalMs, alertAfterIntervalMs)
}

func (m *Manager) scheduleCheck(id subscription.ID, delayMs, alertAfterIntervalMs int64) {
	timer := m.cfg.Clock.AfterFunc(msToDuration(delayMs), func() {
		m.checkPublication(id, alertAfterIntervalMs)
	})
	m.reg.setTimer(id, timer)
}

// checkPublication is the scheduler's firing algorithm. It emits at
// most one missed-publication alert per alertAfterIntervalMs window
// and re-arms itself until the subscription would expire within the
// next window, at which point it stops (the Expired state).
func (m *Manager) checkPublication(id subscription.ID, alertAfterIntervalMs int64) {
	m.reg.withSubscriptionLock(id, func() {
		info, ok := m.reg.info(id)
		if !ok {
			// cleanup(id) won the race; nothing left to check.
			return
		}

		now := m.cfg.Clock.Now().UnixMilli()
		since := now - info.LastPublicationTime

		if alertAfterIntervalMs > 0 && since >= alertAfterIntervalMs {
			if l := m.reg.listener(id); l != nil && l.OnError != nil {
				err := &subscription.PublicationMissedError{SubscriptionID: id}
				safeCall(schedulerLogger, "onError", func() { l.OnError(err) })
			}
			m.metrics.missedPublicationAlerts.Inc()
		}

		// Once the quiet window has already reached the threshold, the
		// next check is a full window away; only a since still short
		// of the threshold schedules to land exactly on the next
		// expected heartbeat instead.
		var delay int64
		if since >= alertAfterIntervalMs {
			delay = alertAfterIntervalMs
		} else {
			delay = alertAfterIntervalMs - since
		}

		expiry := info.QoS.ExpiryDateMs
		if expiry != subscription.NoExpiryDateMs && expiry <= now+delay {
			schedulerLogger.Debug("missed-publication scheduler stopping, subscription expiring", "subscriptionId", id)
			return
		}
		m.scheduleCheck(id, delay, alertAfterIntervalMs)
	})
}

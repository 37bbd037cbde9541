package manager

import "github.com/joynr-project/joynr-go/pkg/log"

// safeCall runs fn and recovers any panic, logging it instead of
// letting it escape into the caller's goroutine (a timer callback or
// the reply/publication dispatch path). User callbacks must never be
// able to bring down the manager.
func safeCall(logger *log.Component, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered from user callback", "callback", what, "panic", r)
		}
	}()
	fn()
}

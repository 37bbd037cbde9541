package manager

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	pkgclock "github.com/joynr-project/joynr-go/pkg/clock"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

// waiter is the registry's PendingReplyWaiter: it resolves the
// registration completion exactly once, either from the reply
// correlator or from its own TTL timer.
type waiter struct {
	done  chan error
	timer *pkgclock.Timer

	// armedAtMs is when the waiter was created, used to observe reply
	// latency once the correlator resolves it.
	armedAtMs int64
}

func newWaiter() *waiter {
	return &waiter{done: make(chan error, 1)}
}

// resolve delivers err to the waiter's Done channel. It is safe to
// call more than once; only the first delivery is observed.
func (w *waiter) resolve(err error) {
	select {
	case w.done <- err:
	default:
	}
}

// registry holds every piece of in-memory state for active
// subscriptions behind a single mutex, following the "single mutex
// suffices" multithreaded option: contention is low and every
// operation but pattern matching is O(1).
type registry struct {
	mu sync.RWMutex

	infos     map[subscription.ID]*subscription.Info
	listeners map[subscription.ID]*subscription.Listener
	timers    map[subscription.ID]*pkgclock.Timer
	waiters   map[subscription.ID]*waiter

	// patterns maps a multicast pattern string to the subscription ids
	// registered under it, in registration order.
	patterns map[string][]subscription.ID
	// patternOf is the reverse lookup cleanup needs: which pattern a
	// given multicast subscription id was filed under.
	patternOf map[subscription.ID]string

	compiled *lru.Cache[string, *compiledPattern]

	// subMu holds one mutex per subscription id; the map itself is
	// guarded by mu.
	// withSubscriptionLock takes the id's mutex around a full
	// read-modify-notify sequence (fetch listener/info, invoke a
	// callback, cleanup) so two Handle*/checkPublication calls for the
	// same id never run that sequence concurrently or out of order,
	// even though each individual registry accessor above only holds
	// mu for the duration of its own map access.
	subMu map[subscription.ID]*sync.Mutex
}

func newRegistry(patternCacheSize int) *registry {
	if patternCacheSize <= 0 {
		patternCacheSize = 256
	}
	cache, err := lru.New[string, *compiledPattern](patternCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size, already guarded
		// above; a fallback of size 1 keeps construction infallible.
		cache, _ = lru.New[string, *compiledPattern](1)
	}
	return &registry{
		infos:     make(map[subscription.ID]*subscription.Info),
		listeners: make(map[subscription.ID]*subscription.Listener),
		timers:    make(map[subscription.ID]*pkgclock.Timer),
		waiters:   make(map[subscription.ID]*waiter),
		patterns:  make(map[string][]subscription.ID),
		patternOf: make(map[subscription.ID]string),
		compiled:  cache,
		subMu:     make(map[subscription.ID]*sync.Mutex),
	}
}

// withSubscriptionLock runs fn with id's per-subscription mutex held,
// serializing every read-modify-notify sequence for that id: no two
// callbacks for the same subscription ever run concurrently, and a
// reply, a publication, a missed-publication alert, and a timeout for
// the same id are strictly ordered against each other. Grounded on
// the teacher's topic.deliverMessage, which holds its topic-wide lock
// across the whole publish-to-subscribers loop.
func (r *registry) withSubscriptionLock(id subscription.ID, fn func()) {
	r.mu.Lock()
	m, ok := r.subMu[id]
	if !ok {
		m = &sync.Mutex{}
		r.subMu[id] = m
	}
	r.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	fn()
}

// put installs the info and, when non-nil, the listener for id. If
// the caller resubscribes with an id already present, the previous
// info and listener are silently overwritten — last writer wins, per
// the reference behavior this module preserves — and, since a fresh
// put always supersedes whatever the id was previously registered as,
// any multicast pattern membership left over from that previous
// registration is dropped along with it.
func (r *registry) put(id subscription.ID, info *subscription.Info, l *subscription.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearPatternLocked(id)
	r.infos[id] = info
	if l != nil {
		r.listeners[id] = l
	}
}

// clearPatternLocked removes id from whatever multicast pattern it was
// previously filed under, if any, pruning the pattern entirely once
// its subscriber list is empty. Callers must hold r.mu.
func (r *registry) clearPatternLocked(id subscription.ID) {
	pattern, ok := r.patternOf[id]
	if !ok {
		return
	}
	delete(r.patternOf, id)
	ids := r.patterns[pattern]
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(r.patterns, pattern)
	} else {
		r.patterns[pattern] = ids
	}
}

func (r *registry) armWaiter(id subscription.ID, w *waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiters[id] = w
}

func (r *registry) setTimer(id subscription.ID, t *pkgclock.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[id] = t
}

// addPattern records id as a subscriber of the given multicast
// pattern string.
func (r *registry) addPattern(id subscription.ID, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[pattern] = append(r.patterns[pattern], id)
	r.patternOf[id] = pattern
}

func (r *registry) info(id subscription.ID) (*subscription.Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[id]
	return info, ok
}

func (r *registry) listener(id subscription.ID) *subscription.Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listeners[id]
}

// touchLastPublication sets LastPublicationTime to nowMs for id, if
// it still exists. Returns false if the subscription is gone.
func (r *registry) touchLastPublication(id subscription.ID, nowMs int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.infos[id]
	if !ok {
		return false
	}
	info.LastPublicationTime = nowMs
	return true
}

// takeWaiter removes and returns the pending waiter for id, if any,
// stopping its TTL timer first.
func (r *registry) takeWaiter(id subscription.ID) *waiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waiters[id]
	if !ok {
		return nil
	}
	delete(r.waiters, id)
	if w.timer != nil {
		w.timer.Stop()
	}
	return w
}

// snapshotIDs returns every subscription id currently tracked by any
// of the four maps, deduplicated.
func (r *registry) snapshotIDs() []subscription.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[subscription.ID]struct{}, len(r.infos))
	for id := range r.infos {
		seen[id] = struct{}{}
	}
	for id := range r.listeners {
		seen[id] = struct{}{}
	}
	for id := range r.timers {
		seen[id] = struct{}{}
	}
	for id := range r.waiters {
		seen[id] = struct{}{}
	}
	ids := make([]subscription.ID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

// patternsSnapshot returns a shallow copy of pattern -> subscriber ids
// for the router to iterate without holding the registry lock across
// listener callbacks.
func (r *registry) patternsSnapshot() map[string][]subscription.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]subscription.ID, len(r.patterns))
	for pattern, ids := range r.patterns {
		cp := make([]subscription.ID, len(ids))
		copy(cp, ids)
		out[pattern] = cp
	}
	return out
}

// cleanup cancels id's publication-check timer if present, removes
// its info (dropping it from its multicast pattern's subscriber list
// when applicable, and the pattern entirely once empty), removes its
// listener, and drops any pending reply waiter. Idempotent: calling it
// twice, or on an id that was never registered, is a no-op the second
// time.
func (r *registry) cleanup(id subscription.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
	if w, ok := r.waiters[id]; ok {
		if w.timer != nil {
			w.timer.Stop()
		}
		delete(r.waiters, id)
	}
	delete(r.listeners, id)
	delete(r.infos, id)
	delete(r.subMu, id)
	r.clearPatternLocked(id)
}

// hasOpenSubscriptions reports whether any of the four maps holds an
// entry.
func (r *registry) hasOpenSubscriptions() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.infos) > 0 || len(r.listeners) > 0 || len(r.timers) > 0 || len(r.waiters) > 0
}

// hasMulticastSubscriptions reports whether the pattern map holds an
// entry.
func (r *registry) hasMulticastSubscriptions() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns) > 0
}

// stats reports counts used by Manager.Stats and the Prometheus
// gauges.
type stats struct {
	OpenSubscriptions int
	MulticastPatterns int
	PendingWaiters    int
}

func (r *registry) stats() stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return stats{
		OpenSubscriptions: len(r.infos),
		MulticastPatterns: len(r.patterns),
		PendingWaiters:    len(r.waiters),
	}
}

// drain empties every map, canceling every timer and resolving every
// waiter with err first. Used by Shutdown.
func (r *registry) drain(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	for _, w := range r.waiters {
		if w.timer != nil {
			w.timer.Stop()
		}
		w.resolve(err)
	}
	r.infos = make(map[subscription.ID]*subscription.Info)
	r.listeners = make(map[subscription.ID]*subscription.Listener)
	r.timers = make(map[subscription.ID]*pkgclock.Timer)
	r.waiters = make(map[subscription.ID]*waiter)
	r.patterns = make(map[string][]subscription.ID)
	r.patternOf = make(map[subscription.ID]string)
	r.subMu = make(map[subscription.ID]*sync.Mutex)
}

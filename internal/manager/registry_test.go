package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgclock "github.com/joynr-project/joynr-go/pkg/clock"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

func TestRegistry_CleanupIsIdempotent(t *testing.T) {
	r := newRegistry(4)
	id := subscription.ID("sub-1")
	r.put(id, &subscription.Info{}, &subscription.Listener{})
	r.addPattern(id, "p1/broadcastFound/+")

	r.cleanup(id)
	assert.False(t, r.hasOpenSubscriptions())
	assert.False(t, r.hasMulticastSubscriptions())

	// Second cleanup on the same id must not panic or corrupt state.
	assert.NotPanics(t, func() { r.cleanup(id) })
}

func TestRegistry_CleanupDropsPatternOnlyWhenEmpty(t *testing.T) {
	r := newRegistry(4)
	idA := subscription.ID("sub-a")
	idB := subscription.ID("sub-b")
	r.put(idA, &subscription.Info{}, &subscription.Listener{})
	r.put(idB, &subscription.Info{}, &subscription.Listener{})
	r.addPattern(idA, "p1/broadcastFound/+")
	r.addPattern(idB, "p1/broadcastFound/+")

	r.cleanup(idA)
	assert.True(t, r.hasMulticastSubscriptions())

	r.cleanup(idB)
	assert.False(t, r.hasMulticastSubscriptions())
}

func TestRegistry_HasOpenSubscriptions_TracksInfosAndWaiters(t *testing.T) {
	r := newRegistry(4)
	assert.False(t, r.hasOpenSubscriptions())

	id := subscription.ID("sub-1")
	r.put(id, &subscription.Info{}, nil)
	assert.True(t, r.hasOpenSubscriptions())

	r.cleanup(id)
	assert.False(t, r.hasOpenSubscriptions())

	w := newWaiter()
	r.armWaiter(id, w)
	assert.True(t, r.hasOpenSubscriptions())
}

func TestRegistry_TakeWaiter_StopsTimerAndRemoves(t *testing.T) {
	r := newRegistry(4)
	clk := pkgclock.NewMock()
	id := subscription.ID("sub-1")

	fired := false
	w := newWaiter()
	w.timer = clk.AfterFunc(0, func() { fired = true })
	r.armWaiter(id, w)

	got := r.takeWaiter(id)
	assert.Same(t, w, got)
	assert.Nil(t, r.takeWaiter(id))

	clk.Add(1)
	assert.False(t, fired, "stopped timer must not fire")
}

func TestRegistry_TouchLastPublication_ReportsMissingSubscription(t *testing.T) {
	r := newRegistry(4)
	assert.False(t, r.touchLastPublication("does-not-exist", 100))

	id := subscription.ID("sub-1")
	r.put(id, &subscription.Info{}, nil)
	assert.True(t, r.touchLastPublication(id, 100))
	info, _ := r.info(id)
	assert.Equal(t, int64(100), info.LastPublicationTime)
}

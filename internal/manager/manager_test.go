package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	pkgclock "github.com/joynr-project/joynr-go/pkg/clock"
	"github.com/joynr-project/joynr-go/pkg/subscription"
)

func newTestManager(t *testing.T) (*Manager, *fakeDispatcher, *pkgclock.Mock) {
	t.Helper()
	clk := pkgclock.NewMock()
	d := newFakeDispatcher()
	m := New(d, WithClock(clk), WithRegisterer(prometheus.NewRegistry()))
	return m, d, clk
}

// S1 – attribute on-change-with-keepalive: heartbeat and alert.
func TestScenario_S1_AlertsBeforeExpiry(t *testing.T) {
	m, _, clk := newTestManager(t)

	var errs []error
	listener := subscription.Listener{
		OnReceive: func(any) {},
		OnError:   func(err error) { errs = append(errs, err) },
	}

	reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "temperature",
		AttributeType: "Double",
		QoS: subscription.QoS{
			MinIntervalMs:        100,
			MaxIntervalMs:        1000,
			AlertAfterIntervalMs: 1500,
			ExpiryDateMs:         clk.Now().UnixMilli() + 5000,
		},
		Listener: listener,
	})
	require.NoError(t, err)

	// Acknowledge the subscription so the reply-TTL waiter is stopped;
	// otherwise it would fail the registration at expiry with a
	// TimeoutError delivered to OnError.
	m.HandleSubscriptionReply(subscription.SubscriptionReply{SubscriptionID: reg.ID})
	require.NoError(t, <-reg.Done)

	clk.Add(1500 * time.Millisecond)
	clk.Add(1500 * time.Millisecond)
	clk.Add(1500 * time.Millisecond)
	clk.Add(1500 * time.Millisecond) // crosses expiry, must not fire again

	assert.Len(t, errs, 3)
	for _, e := range errs {
		assert.IsType(t, &subscription.PublicationMissedError{}, e)
	}
}

// S2 – alert suppressed by publications.
func TestScenario_S2_AlertSuppressedByPublications(t *testing.T) {
	m, _, clk := newTestManager(t)

	var errs []error
	var received []any
	listener := subscription.Listener{
		OnReceive: func(v any) { received = append(received, v) },
		OnError:   func(err error) { errs = append(errs, err) },
	}

	reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "temperature",
		AttributeType: "Double",
		QoS: subscription.QoS{
			MinIntervalMs:        100,
			MaxIntervalMs:        1000,
			AlertAfterIntervalMs: 1000,
			ExpiryDateMs:         clk.Now().UnixMilli() + 10000,
		},
		Listener: listener,
	})
	require.NoError(t, err)

	// A publication at t=500 pushes lastPublicationTime past the
	// timer's own t=1000 deadline, so that first check sees only a
	// 500ms quiet window and stays silent.
	clk.Add(500 * time.Millisecond)
	require.NoError(t, m.HandlePublication(subscription.SubscriptionPublication{SubscriptionID: reg.ID, Response: 21.0}))

	clk.Add(500 * time.Millisecond) // t=1000, lands exactly on the first check
	assert.Empty(t, errs)

	// No further publications arrive; the next check at t=1500 sees a
	// full 1000ms quiet window since the last publication and alerts.
	clk.Add(500 * time.Millisecond) // t=1500, lands exactly on the rescheduled check
	assert.Len(t, errs, 1)
	assert.IsType(t, &subscription.PublicationMissedError{}, errs[0])
	assert.Len(t, received, 1)
}

// S3 – subscription reply error.
func TestScenario_S3_ReplyError(t *testing.T) {
	m, _, _ := newTestManager(t)

	var gotErr error
	var onErrorCalls int
	listener := subscription.Listener{
		OnReceive: func(any) {},
		OnError:   func(err error) { onErrorCalls++; gotErr = err },
	}

	reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "temperature",
		AttributeType: "Double",
		QoS:           subscription.QoS{},
		Listener:      listener,
	})
	require.NoError(t, err)

	providerErr := errors.New("no such attribute")
	m.HandleSubscriptionReply(subscription.SubscriptionReply{SubscriptionID: reg.ID, Error: providerErr})

	completion := <-reg.Done
	assert.Equal(t, providerErr, completion)
	assert.Equal(t, 1, onErrorCalls)
	assert.Equal(t, providerErr, gotErr)

	_, exists := m.reg.info(reg.ID)
	assert.False(t, exists)
	assert.False(t, m.HasOpenSubscriptions())
}

// S4 – multicast pattern matching.
func TestScenario_S4_MulticastMatching(t *testing.T) {
	m, _, _ := newTestManager(t)

	var fmSubReceived []any
	var plusSubReceived []any

	_, err := m.RegisterBroadcastSubscription(context.Background(), BroadcastSubscriptionParams{
		ProxyID:       "proxy-1",
		Entry:         subscription.ProviderDiscoveryEntry{ParticipantID: "p1"},
		BroadcastName: "stationFound",
		Partitions:    []string{"+"},
		Listener: subscription.Listener{
			OnReceive: func(v any) { plusSubReceived = append(plusSubReceived, v) },
		},
	})
	require.NoError(t, err)

	_, err = m.RegisterBroadcastSubscription(context.Background(), BroadcastSubscriptionParams{
		ProxyID:       "proxy-1",
		Entry:         subscription.ProviderDiscoveryEntry{ParticipantID: "p1"},
		BroadcastName: "stationFound",
		Partitions:    []string{"fm", "*"},
		Listener: subscription.Listener{
			OnReceive: func(v any) { fmSubReceived = append(fmSubReceived, v) },
		},
	})
	require.NoError(t, err)

	err = m.HandleMulticastPublication(subscription.MulticastPublication{
		MulticastID: "p1/stationFound/fm/classic",
		Response:    "classic-fm",
	})
	require.NoError(t, err)
	assert.Len(t, fmSubReceived, 1)
	assert.Empty(t, plusSubReceived)

	err = m.HandleMulticastPublication(subscription.MulticastPublication{
		MulticastID: "p1/stationFound/dab",
		Response:    "dab-station",
	})
	require.NoError(t, err)
	assert.Len(t, plusSubReceived, 1)
	assert.Len(t, fmSubReceived, 1)
}

// S5 – unregister.
func TestScenario_S5_Unregister(t *testing.T) {
	m, d, _ := newTestManager(t)

	reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "temperature",
		AttributeType: "Double",
		QoS:           subscription.QoS{},
		Listener:      subscription.Listener{OnReceive: func(any) {}},
	})
	require.NoError(t, err)

	m.HandleSubscriptionReply(subscription.SubscriptionReply{SubscriptionID: reg.ID})
	require.NoError(t, <-reg.Done)

	err = m.UnregisterSubscription(context.Background(), reg.ID, subscription.QoS{})
	require.NoError(t, err)

	assert.Equal(t, 1, d.stopCount())
	assert.Equal(t, reg.ID, d.stops[0].SubscriptionID)
	assert.False(t, m.HasOpenSubscriptions())
}

// S6 – shutdown drains waiters.
func TestScenario_S6_ShutdownDrainsWaiters(t *testing.T) {
	m, _, _ := newTestManager(t)

	reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "temperature",
		AttributeType: "Double",
		QoS:           subscription.QoS{},
		Listener:      subscription.Listener{OnReceive: func(any) {}},
	})
	require.NoError(t, err)

	require.NoError(t, m.Shutdown())

	completion := <-reg.Done
	assert.IsType(t, &subscription.ShutdownError{}, completion)

	_, err = m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "humidity",
		AttributeType: "Double",
		Listener:      subscription.Listener{OnReceive: func(any) {}},
	})
	assert.IsType(t, &subscription.ShutdownError{}, err)
}

func TestRegisterAttributeSubscription_BadInput(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:  "proxy-1",
		Listener: subscription.Listener{OnReceive: func(any) {}},
	})
	assert.IsType(t, &subscription.BadInputError{}, err)
}

func TestHandlePublication_UnknownSubscription(t *testing.T) {
	m, _, _ := newTestManager(t)
	err := m.HandlePublication(subscription.SubscriptionPublication{SubscriptionID: "does-not-exist"})
	assert.IsType(t, &subscription.UnknownSubscriptionError{}, err)
	assert.False(t, m.HasOpenSubscriptions())
}

func TestHandleMulticastPublication_UnknownMulticast(t *testing.T) {
	m, _, _ := newTestManager(t)
	err := m.HandleMulticastPublication(subscription.MulticastPublication{MulticastID: "no/such/pattern"})
	assert.IsType(t, &subscription.UnknownMulticastError{}, err)
}

func TestTerminateSubscriptions_StopsEverything(t *testing.T) {
	m, d, _ := newTestManager(t)

	for i := 0; i < 3; i++ {
		reg, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
			ProxyID:       "proxy-1",
			AttributeName: "attr",
			AttributeType: "Double",
			Listener:      subscription.Listener{OnReceive: func(any) {}},
		})
		require.NoError(t, err)
		m.HandleSubscriptionReply(subscription.SubscriptionReply{SubscriptionID: reg.ID})
		require.NoError(t, <-reg.Done)
	}

	err := m.TerminateSubscriptions(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, d.stopCount())
	assert.False(t, m.HasOpenSubscriptions())
}

func TestShutdown_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, _, clk := newTestManager(t)
	_, err := m.RegisterAttributeSubscription(context.Background(), AttributeSubscriptionParams{
		ProxyID:       "proxy-1",
		AttributeName: "attr",
		AttributeType: "Double",
		QoS: subscription.QoS{
			AlertAfterIntervalMs: 100,
			ExpiryDateMs:         clk.Now().UnixMilli() + 60000,
		},
		Listener: subscription.Listener{OnReceive: func(any) {}},
	})
	require.NoError(t, err)

	require.NoError(t, m.Shutdown())
}

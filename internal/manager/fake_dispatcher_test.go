package manager

import (
	"context"
	"sync"

	"github.com/joynr-project/joynr-go/pkg/subscription"
)

// fakeDispatcher records every send the manager makes and lets tests
// script a canned error returned by every send of a given kind.
type fakeDispatcher struct {
	mu sync.Mutex

	subscriptionRequests []subscription.SubscriptionRequest
	broadcastRequests    []subscription.BroadcastSubscriptionRequest
	multicastRequests    []subscription.MulticastSubscriptionRequest
	stops                []subscription.SubscriptionStop
	multicastStops       []struct {
		multicastID string
		stop        subscription.SubscriptionStop
	}

	subscriptionRequestErr error
	broadcastRequestErr    error
	multicastRequestErr    error
	stopErr                error
	multicastStopErr       error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{}
}

func (d *fakeDispatcher) SendSubscriptionRequest(_ context.Context, _ string, _ subscription.ProviderDiscoveryEntry, req subscription.SubscriptionRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscriptionRequests = append(d.subscriptionRequests, req)
	return d.subscriptionRequestErr
}

func (d *fakeDispatcher) SendBroadcastSubscriptionRequest(_ context.Context, _ string, _ subscription.ProviderDiscoveryEntry, req subscription.BroadcastSubscriptionRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.broadcastRequests = append(d.broadcastRequests, req)
	return d.broadcastRequestErr
}

func (d *fakeDispatcher) SendMulticastSubscriptionRequest(_ context.Context, _ string, _ subscription.ProviderDiscoveryEntry, req subscription.MulticastSubscriptionRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.multicastRequests = append(d.multicastRequests, req)
	return d.multicastRequestErr
}

func (d *fakeDispatcher) SendSubscriptionStop(_ context.Context, _ string, _ subscription.ProviderDiscoveryEntry, stop subscription.SubscriptionStop) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops = append(d.stops, stop)
	return d.stopErr
}

func (d *fakeDispatcher) SendMulticastSubscriptionStop(_ context.Context, _ string, _ subscription.ProviderDiscoveryEntry, multicastID string, stop subscription.SubscriptionStop) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.multicastStops = append(d.multicastStops, struct {
		multicastID string
		stop        subscription.SubscriptionStop
	}{multicastID, stop})
	return d.multicastStopErr
}

func (d *fakeDispatcher) lastSubscriptionRequest() subscription.SubscriptionRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subscriptionRequests[len(d.subscriptionRequests)-1]
}

func (d *fakeDispatcher) stopCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stops)
}

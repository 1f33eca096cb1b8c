package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
)

func newBus() *SyncEventBus {
	return NewSyncEventBus(logger.NewTestLogger())
}

// TestPublishSubscribe tests basic publish/subscribe functionality.
func TestPublishSubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var received domain.Event
	subID := bus.Subscribe(domain.EventTimeUpdate, func(event domain.Event) {
		received = event
	})
	if subID == "" {
		t.Fatal("Subscribe returned empty subscription ID")
	}

	bus.Publish(domain.NewTimeUpdateEvent(3*time.Second, time.Minute))

	if received == nil {
		t.Fatal("Handler did not receive event")
	}
	e, ok := received.(domain.TimeUpdateEvent)
	if !ok {
		t.Fatalf("Expected TimeUpdateEvent, got %T", received)
	}
	if e.Position != 3*time.Second || e.Duration != time.Minute {
		t.Errorf("Unexpected payload: %+v", e)
	}
}

// TestDeliveryOrder tests that handlers run in subscription order, wildcards last.
func TestDeliveryOrder(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var order []string
	bus.SubscribeAll(func(domain.Event) { order = append(order, "all") })
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { order = append(order, "a") })
	middle := bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { order = append(order, "b") })
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { order = append(order, "c") })
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { order = append(order, "d") })

	bus.Unsubscribe(middle)
	bus.Publish(domain.NewVolumeChangedEvent(0.5))

	want := []string{"a", "c", "d", "all"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

// TestUnsubscribe tests unsubscribing handlers, including unknown IDs.
func TestUnsubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var calls int32
	id := bus.Subscribe(domain.EventTimeUpdate, func(domain.Event) { atomic.AddInt32(&calls, 1) })

	bus.Publish(domain.NewTimeUpdateEvent(0, 0))
	bus.Unsubscribe(id)
	bus.Unsubscribe(id)
	bus.Unsubscribe("does-not-exist")
	bus.Publish(domain.NewTimeUpdateEvent(0, 0))

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 call, got %d", got)
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
}

// TestSubscribeFiltered tests that filters gate delivery.
func TestSubscribeFiltered(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var playing int
	bus.SubscribeFiltered(domain.EventPlaybackStateChanged, func(e domain.Event) bool {
		return e.(domain.PlaybackStateChangedEvent).Playing()
	}, func(domain.Event) { playing++ })

	bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, domain.StateStopped))
	bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePaused, domain.StatePlaying))
	bus.Publish(domain.NewPlaybackStateChangedEvent(domain.StatePlaying, domain.StatePaused))

	if playing != 2 {
		t.Errorf("Expected 2 filtered deliveries, got %d", playing)
	}
}

// TestHasSubscribers tests type-specific and wildcard checks.
func TestHasSubscribers(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	if bus.HasSubscribers(domain.EventScriptReplaced) {
		t.Error("Expected no subscribers on a new bus")
	}

	id := bus.Subscribe(domain.EventScriptReplaced, func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventScriptReplaced) {
		t.Error("Expected subscribers after Subscribe")
	}
	if bus.HasSubscribers(domain.EventTrackLoaded) {
		t.Error("Expected no subscribers for another type")
	}

	bus.Unsubscribe(id)
	bus.SubscribeAll(func(domain.Event) {})
	if !bus.HasSubscribers(domain.EventTrackLoaded) {
		t.Error("Wildcard subscriber should count for every type")
	}
}

// TestHandlerPanic tests that one panicking handler does not stop the rest.
func TestHandlerPanic(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var after bool
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { panic("boom") })
	bus.Subscribe(domain.EventTrackError, func(domain.Event) { after = true })

	bus.Publish(domain.NewTrackErrorEvent("x.mp3", errors.New("decode failed")))

	if !after {
		t.Error("Handler after the panicking one was not called")
	}
}

// TestPublishFromHandler tests re-entrant use of the bus.
func TestPublishFromHandler(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var volumes int
	bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) { volumes++ })
	bus.Subscribe(domain.EventTrackLoaded, func(domain.Event) {
		bus.Publish(domain.NewVolumeChangedEvent(1))
		bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {})
	})

	bus.Publish(domain.NewTrackLoadedEvent(domain.Track{URI: "a.mp3"}))

	if volumes != 1 {
		t.Errorf("Expected nested publish to be delivered once, got %d", volumes)
	}
	if bus.SubscriberCount() != 3 {
		t.Errorf("Expected 3 subscribers, got %d", bus.SubscriberCount())
	}
}

// TestClose tests that a closed bus ignores publishes and rejects subscriptions.
func TestClose(t *testing.T) {
	bus := newBus()

	var calls int
	bus.Subscribe(domain.EventTimeUpdate, func(domain.Event) { calls++ })

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on second Close, got %v", err)
	}

	bus.Publish(domain.NewTimeUpdateEvent(0, 0))
	if calls != 0 {
		t.Errorf("Expected no delivery after Close, got %d", calls)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Subscribe on a closed bus to panic")
		}
	}()
	bus.Subscribe(domain.EventTimeUpdate, func(domain.Event) {})
}

// TestNilEventAndHandler tests the nil guards.
func TestNilEventAndHandler(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	bus.Publish(nil)

	defer func() {
		if recover() == nil {
			t.Error("Expected nil handler to panic")
		}
	}()
	bus.Subscribe(domain.EventTimeUpdate, nil)
}

// TestConcurrentPublishAndSubscribe tests concurrent use under -race.
func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := newBus()
	defer bus.Close()

	var delivered int64
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				id := bus.Subscribe(domain.EventTimeUpdate, func(domain.Event) {
					atomic.AddInt64(&delivered, 1)
				})
				bus.Unsubscribe(id)
			}
		}()
		go func() {
			defer wg.Done()
			for i := range 50 {
				bus.Publish(domain.NewTimeUpdateEvent(time.Duration(i)*time.Millisecond, time.Second))
			}
		}()
	}
	wg.Wait()

	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected all subscriptions removed, got %d", bus.SubscriberCount())
	}
}

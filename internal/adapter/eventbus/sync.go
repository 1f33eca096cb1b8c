// Package eventbus provides the in-process event bus that carries media
// notifications from playback to the visualizer and the UI.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

// ErrClosed is returned by Close on a bus that is already closed.
var ErrClosed = errors.New("event bus already closed")

// SyncEventBus delivers events synchronously on the publishing goroutine.
// Type-specific handlers run first, in subscription order, then handlers
// registered with SubscribeAll.
//
// Thread-safety: This implementation is thread-safe. Handlers may publish,
// subscribe and unsubscribe from inside a delivery.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	byType map[domain.EventType][]subscription
	all    []subscription
	nextID uint64
	closed bool

	// quiet event types are not logged on every publish
	quiet map[domain.EventType]bool
}

type subscription struct {
	id      domain.SubscriptionID
	filter  ports.EventFilter
	handler domain.EventHandler
}

// NewSyncEventBus creates an empty bus. Time updates are not logged per
// publish because they arrive several times a second.
func NewSyncEventBus(logger *slog.Logger) *SyncEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncEventBus{
		logger: logger.With("component", "eventbus"),
		byType: make(map[domain.EventType][]subscription),
		quiet:  map[domain.EventType]bool{domain.EventTimeUpdate: true},
	}
}

// Publish delivers event to its subscribers. Publishing on a closed bus or
// publishing nil does nothing. A panicking handler is logged and does not
// stop delivery to the others.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	targets := make([]subscription, 0, len(bus.byType[event.Type()])+len(bus.all))
	targets = append(targets, bus.byType[event.Type()]...)
	targets = append(targets, bus.all...)
	quiet := bus.quiet[event.Type()]
	bus.mu.RUnlock()

	if !quiet {
		bus.logger.Debug("event published", "event_type", event.Type(), "handlers", len(targets))
	}

	for _, sub := range targets {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		bus.deliver(sub, event)
	}
}

func (bus *SyncEventBus) deliver(sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("event handler panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()
	sub.handler(event)
}

// Subscribe registers handler for one event type.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.SubscribeFiltered(eventType, nil, handler)
}

// SubscribeFiltered registers handler for events of eventType that pass filter.
// A nil filter accepts everything.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	sub := subscription{
		id:      domain.SubscriptionID(fmt.Sprintf("%s#%d", eventType, bus.nextID)),
		filter:  filter,
		handler: handler,
	}
	bus.byType[eventType] = append(bus.byType[eventType], sub)
	return sub.id
}

// SubscribeAll registers handler for every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	sub := subscription{
		id:      domain.SubscriptionID(fmt.Sprintf("*#%d", bus.nextID)),
		handler: handler,
	}
	bus.all = append(bus.all, sub)
	return sub.id
}

// Unsubscribe removes a subscription, keeping the order of the rest.
// Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	match := func(s subscription) bool { return s.id == id }

	for eventType, subs := range bus.byType {
		if i := slices.IndexFunc(subs, match); i >= 0 {
			// Copy so a Publish holding the old slice is unaffected.
			bus.byType[eventType] = slices.Delete(slices.Clone(subs), i, i+1)
			return
		}
	}
	if i := slices.IndexFunc(bus.all, match); i >= 0 {
		bus.all = slices.Delete(slices.Clone(bus.all), i, i+1)
	}
}

// HasSubscribers reports whether publishing eventType would reach anyone.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.byType[eventType]) > 0 || len(bus.all) > 0
}

// SubscriberCount returns the number of active subscriptions.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.all)
	for _, subs := range bus.byType {
		count += len(subs)
	}
	return count
}

// Close drops all subscriptions. Later publishes are ignored.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return ErrClosed
	}
	bus.closed = true
	bus.byType = make(map[domain.EventType][]subscription)
	bus.all = nil
	return nil
}

var _ ports.FilteringEventBus = (*SyncEventBus)(nil)

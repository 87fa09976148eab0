package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventBus delivers the events of one game synchronously. Each published
// event is stamped with the next sequence number, and receivers see events in
// that order: subscribers in subscription order, then the handlers registered
// for the event type. Receivers must not publish.
type EventBus struct {
	mu       sync.Mutex
	subs     []Subscriber
	handlers map[string][]Handler
	seq      uint64
	logger   zerolog.Logger
}

// NewEventBus creates a bus that reports receiver panics to logger.
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds sub. A subscriber with the same ID is replaced in place.
func (eb *EventBus) Subscribe(sub Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subs {
		if s.ID() == sub.ID() {
			eb.subs[i] = sub
			return
		}
	}
	eb.subs = append(eb.subs, sub)
	eb.logger.Debug().Str("subscriber_id", sub.ID()).Msg("Subscriber added to event bus")
}

// On registers handler for events of eventType.
func (eb *EventBus) On(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Publish numbers event and hands it to every interested receiver.
func (eb *EventBus) Publish(event Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.seq++
	event.stamp(eb.seq)

	eventType := event.Type()
	for _, sub := range eb.subs {
		if sub.InterestedIn(eventType) {
			eb.deliver(sub.ID(), event, sub.HandleEvent)
		}
	}
	for _, h := range eb.handlers[eventType] {
		eb.deliver(eventType+" handler", event, h)
	}
}

// Published returns how many events the bus has published.
func (eb *EventBus) Published() uint64 {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	return eb.seq
}

// deliver runs one receiver; a panic is logged so the remaining receivers still run.
func (eb *EventBus) deliver(receiver string, event Event, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("receiver", receiver).
				Str("event_type", event.Type()).
				Str("game_id", event.GameID()).
				Uint64("seq", event.Sequence()).
				Interface("panic", r).
				Msg("Event receiver panicked")
		}
	}()
	fn(event)
}

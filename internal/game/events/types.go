package events

import (
	"time"
)

// Event is anything a game publishes while it runs. Events are created by the
// constructors in this package and numbered by the bus that publishes them.
type Event interface {
	Type() string
	GameID() string
	Timestamp() time.Time
	// Sequence is the 1-based publish order within the game, 0 until published.
	Sequence() uint64

	stamp(seq uint64)
}

// BaseEvent carries the fields every event shares.
type BaseEvent struct {
	EventType string    `json:"type"`
	Game      string    `json:"game_id"`
	Time      time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) GameID() string       { return e.Game }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) Sequence() uint64     { return e.Seq }

func (e *BaseEvent) stamp(seq uint64) { e.Seq = seq }

// EventMetadata locates an event in the game: who acted and in which round.
type EventMetadata struct {
	PlayerID string `json:"player_id,omitempty"`
	Round    int    `json:"round,omitempty"`
}

// Handler receives events of one type.
type Handler func(Event)

// Subscriber receives every event type it is interested in.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is what the engine needs from a bus.
type Publisher interface {
	Publish(Event)
}

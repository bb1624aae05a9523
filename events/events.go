package events

import (
	"github.com/milk9111/slingshot/common"
	"github.com/milk9111/slingshot/physics"
)

// Kind identifies a notification.
type Kind string

const (
	EnterAiming    Kind = "enter_aiming"
	PreviewUpdated Kind = "preview_updated"
	ReleaseStarted Kind = "release_started"
	LaunchStarted  Kind = "launch_started"
	Cancelled      Kind = "cancelled"
	Handoff        Kind = "handoff"
	Reset          Kind = "reset"
)

// Event carries a single pose, or a hit flag plus hit info for previews.
type Event struct {
	Kind   Kind
	Pose   common.Pose
	HasHit bool
	Hit    physics.Hit
}

// Handler receives events synchronously at publish time.
type Handler func(Event)

// Bus broadcasts events to subscribers and records them in a FIFO queue that
// frame-based consumers drain.
type Bus struct {
	handlers map[Kind][]Handler
	all      []Handler
	items    []Event
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers h for one kind.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	if b == nil || h == nil {
		return
	}
	if b.handlers == nil {
		b.handlers = make(map[Kind][]Handler)
	}
	b.handlers[kind] = append(b.handlers[kind], h)
}

// SubscribeAll registers h for every kind.
func (b *Bus) SubscribeAll(h Handler) {
	if b == nil || h == nil {
		return
	}
	b.all = append(b.all, h)
}

// Publish delivers evt to subscribers in registration order and queues it.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.items = append(b.items, evt)
	for _, h := range b.handlers[evt.Kind] {
		h(evt)
	}
	for _, h := range b.all {
		h(evt)
	}
}

// Drain returns all queued events and clears the queue.
func (b *Bus) Drain() []Event {
	if b == nil || len(b.items) == 0 {
		return nil
	}
	out := b.items
	b.items = nil
	return out
}

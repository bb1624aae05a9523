package events

import "testing"

func TestBusDeliversAndQueues(t *testing.T) {
	b := NewBus()
	var launches, all int
	b.Subscribe(LaunchStarted, func(Event) { launches++ })
	b.SubscribeAll(func(Event) { all++ })

	b.Publish(Event{Kind: EnterAiming})
	b.Publish(Event{Kind: LaunchStarted})

	if launches != 1 || all != 2 {
		t.Fatalf("launches=%d all=%d", launches, all)
	}
	drained := b.Drain()
	if len(drained) != 2 || drained[0].Kind != EnterAiming || drained[1].Kind != LaunchStarted {
		t.Fatalf("drain = %+v", drained)
	}
	if b.Drain() != nil {
		t.Fatalf("queue should be empty after drain")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var b *Bus
	b.Publish(Event{Kind: Reset})
	b.Subscribe(Reset, func(Event) {})
	if b.Drain() != nil {
		t.Fatalf("nil bus drained events")
	}
}

package objrepo

import "testing"

func TestEventBridgeDeliversInOrder(t *testing.T) {
	b := newEventBridge()
	var order []string
	b.Subscribe(func(ev Event) { order = append(order, "first:"+ev.Kind.String()) })
	b.Subscribe(func(ev Event) { order = append(order, "second:"+ev.Kind.String()) })

	b.emit(Event{Kind: DidCreate})

	if len(order) != 2 {
		t.Fatalf("len(order) = %d, want 2", len(order))
	}
	if order[0] != "first:didCreate" || order[1] != "second:didCreate" {
		t.Errorf("order = %v, want [first:didCreate second:didCreate]", order)
	}
}

func TestEventBridgeStampsTimestamp(t *testing.T) {
	b := newEventBridge()
	var got Event
	b.Subscribe(func(ev Event) { got = ev })
	b.emit(Event{Kind: DidInitialize})
	if got.At.IsZero() {
		t.Errorf("Event.At is zero, want a timestamp")
	}
}

func TestEventKindString(t *testing.T) {
	cases := map[EventKind]string{
		DidPutItem:    "didPutItem",
		DidDeleteItem: "didDeleteItem",
		DidCreate:     "didCreate",
		DidInitialize: "didInitialize",
		WillDestroy:   "willDestroy",
		DidDestroy:    "didDestroy",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}

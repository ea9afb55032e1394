// bus/bus_test.go
package bus

import (
	"testing"
	"time"
)

func expectPayload(t *testing.T, s *Subscription, want any) {
	t.Helper()
	select {
	case m := <-s.Channel():
		if m.Payload != want {
			t.Fatalf("payload = %v, want %v", m.Payload, want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for %v", want)
	}
}

func expectNoMessage(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("unexpected message on %v: %v", m.Topic, m.Payload)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	sub := c.Subscribe(T("ir", "rx", "datagram"))

	c.Publish(c.NewMessage(T("ir", "rx", "datagram"), "0101", false))
	expectPayload(t, sub, "0101")

	c.Publish(c.NewMessage(T("ir", "tx", "injected"), "x", false))
	expectNoMessage(t, sub)
}

func TestRetainedDeliveredOnSubscribe(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(T("config", "ir"), "persist", true))

	sub := c.Subscribe(T("config", "ir"))
	expectPayload(t, sub, "persist")

	// nil payload clears
	c.Publish(c.NewMessage(T("config", "ir"), nil, true))
	late := c.Subscribe(T("config", "ir"))
	expectNoMessage(t, late)
}

func TestWildcards(t *testing.T) {
	b := NewBus(8)
	c := b.NewConnection("test")
	one := c.Subscribe(T("ir", AnyOne, "datagram"))
	tail := c.Subscribe(T("ir", AnyTail))
	none := c.Subscribe(T("ir", AnyOne, "other"))

	c.Publish(c.NewMessage(T("ir", "rx", "datagram"), 1, false))
	expectPayload(t, one, 1)
	expectPayload(t, tail, 1)
	expectNoMessage(t, none)

	c.Publish(c.NewMessage(T("ir"), 2, false))
	expectPayload(t, tail, 2)
	expectNoMessage(t, one)
}

func TestIntAndStringTokensDiffer(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")
	c.Publish(c.NewMessage(T("pin", 3), "int", true))
	sub := c.Subscribe(T("pin", "3"))
	expectNoMessage(t, sub)
	subInt := c.Subscribe(T("pin", 3))
	expectPayload(t, subInt, "int")
}

func TestFullQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(T("a"))
	for i := 1; i <= 3; i++ {
		c.Publish(c.NewMessage(T("a"), i, false))
	}
	expectPayload(t, sub, 2)
	expectPayload(t, sub, 3)
}

func TestUnsubscribeAndDisconnectClose(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	s1 := c.Subscribe(T("a"))
	s2 := c.Subscribe(T("b"))

	s1.Unsubscribe()
	if _, ok := <-s1.Channel(); ok {
		t.Fatal("s1 channel still open")
	}
	c.Unsubscribe(s1) // second call is a no-op

	c.Disconnect()
	if _, ok := <-s2.Channel(); ok {
		t.Fatal("s2 channel still open after Disconnect")
	}
	c.Publish(c.NewMessage(T("b"), 1, false)) // no subscribers left, must not panic
}

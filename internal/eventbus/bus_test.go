package eventbus

import (
	"testing"
	"time"
)

func TestPublishFanout(t *testing.T) {
	t.Parallel()
	b := New()
	a, unsubA := b.Subscribe(4)
	c, unsubC := b.Subscribe(4)
	defer unsubA()
	defer unsubC()

	b.Publish(Event{Type: TaskCreated, Data: TaskChange{TaskID: "t1"}})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case e := <-ch:
			if e.Type != TaskCreated || e.Time.IsZero() {
				t.Fatalf("event = %+v", e)
			}
			if e.Data.(TaskChange).TaskID != "t1" {
				t.Fatalf("payload = %+v", e.Data)
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: "a"})
	b.Publish(Event{Type: "b"})

	if got := Dropped(b); got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
	if e := <-ch; e.Type != "a" {
		t.Fatalf("first event = %s", e.Type)
	}
}

func TestUnsubscribeClosesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	unsub()
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("channel still open")
	}
	b.Publish(Event{Type: "after"})
}

func TestNop(t *testing.T) {
	t.Parallel()
	var b Bus = Nop{}
	b.Publish(Event{Type: "x"})
	ch, unsub := b.Subscribe(1)
	unsub()
	if _, ok := <-ch; ok {
		t.Fatal("nop channel not closed")
	}
	if Dropped(b) != 0 {
		t.Fatal("nop bus reported drops")
	}
}

package eventbus

import "testing"

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[coverageAlert]()
	ch := bus.Subscribe()
	bus.Publish(coverageAlert{ZoneID: "z2", Risk: "LAST_UNIT"})
	alert := <-ch
	if alert.ZoneID != "z2" || alert.Risk != "LAST_UNIT" {
		t.Fatalf("unexpected alert %+v", alert)
	}
	bus.Unsubscribe(ch)
}

func TestTypedBusFanOut(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Publish(42)
	if v := <-ch1; v != 42 {
		t.Fatalf("ch1 expected 42 got %d", v)
	}
	if v := <-ch2; v != 42 {
		t.Fatalf("ch2 expected 42 got %d", v)
	}
	bus.Close()
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestTypedBusUnsubscribeAfterClose(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

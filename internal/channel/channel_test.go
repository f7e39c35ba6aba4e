package channel

import (
	"testing"

	"github.com/vitrinelabs/vitrine/internal/patch"
)

func TestSendDroppedWhenNotReady(t *testing.T) {
	c := New()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Send(patch.NewEnvelope(patch.UpdateStoreName, "x"))

	select {
	case env := <-ch:
		t.Fatalf("delivery before ready: %+v", env)
	default:
	}
}

func TestSendDeliveredInOrder(t *testing.T) {
	c := New()
	c.SetReady(true)
	ch, cancel := c.Subscribe()
	defer cancel()

	names := []string{"A", "B", "C"}
	for _, n := range names {
		c.Send(patch.NewEnvelope(patch.UpdateStoreName, n))
	}

	for _, want := range names {
		env := <-ch
		if got, _ := env.Data.(string); got != want {
			t.Fatalf("out of order: got %q, want %q", got, want)
		}
	}
}

func TestReadyGateReopens(t *testing.T) {
	c := New()
	ch, cancel := c.Subscribe()
	defer cancel()

	c.SetReady(true)
	c.Send(patch.NewEnvelope(patch.UpdateStoreName, "kept"))
	c.SetReady(false)
	c.Send(patch.NewEnvelope(patch.UpdateStoreName, "dropped"))
	c.SetReady(true)
	c.Send(patch.NewEnvelope(patch.UpdateStoreName, "kept too"))

	if got, _ := (<-ch).Data.(string); got != "kept" {
		t.Fatalf("first delivery = %q", got)
	}
	if got, _ := (<-ch).Data.(string); got != "kept too" {
		t.Fatalf("message sent while closed was delivered before %q", got)
	}
}

func TestCancelDetaches(t *testing.T) {
	c := New()
	c.SetReady(true)
	ch, cancel := c.Subscribe()

	cancel()
	cancel() // second cancel is harmless

	if _, open := <-ch; open {
		t.Fatal("subscription channel not closed on cancel")
	}

	// Sends after detach must not panic.
	c.Send(patch.NewEnvelope(patch.UpdateStoreName, "x"))
}

func TestFullSubscriberDoesNotBlockSender(t *testing.T) {
	c := New()
	c.SetReady(true)
	_, cancel := c.Subscribe()
	defer cancel()

	// Never drained: once the buffer fills, further sends drop instead of
	// blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			c.Send(patch.NewEnvelope(patch.UpdateStoreName, "x"))
		}
		close(done)
	}()

	<-done
}

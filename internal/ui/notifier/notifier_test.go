package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("no change received")
		return Change{}
	}
}

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Listeners())

	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe is harmless.
	n.Unsubscribe(ch)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()
	ch1 := n.Subscribe()
	ch2 := n.Subscribe()
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Broadcast(Change{ReportID: "r1", Kind: Saved})

	assert.Equal(t, Change{ReportID: "r1", Kind: Saved}, receive(t, ch1))
	assert.Equal(t, Change{ReportID: "r1", Kind: Saved}, receive(t, ch2))
}

func TestNotifier_BroadcastKeepsLatest(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Broadcast(Change{ReportID: "r1", Kind: Saved})
	n.Broadcast(Change{ReportID: "r2", Kind: Deleted})

	assert.Equal(t, Change{ReportID: "r2", Kind: Deleted}, receive(t, ch))
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %v", c)
	default:
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe()
			n.Broadcast(Change{ReportID: "r", Kind: Saved})
			n.Unsubscribe(ch)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, n.Listeners())
}

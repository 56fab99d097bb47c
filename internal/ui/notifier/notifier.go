// Package notifier tells open catalog pages that the report catalog changed.
package notifier

import "sync"

// ChangeKind says what happened to a report.
type ChangeKind string

// Change kinds.
const (
	Saved   ChangeKind = "saved"
	Deleted ChangeKind = "deleted"
)

// Change describes one catalog change.
type Change struct {
	ReportID string
	Kind     ChangeKind
}

// Notifier fans catalog changes out to subscribed listeners.
// Listeners only need the latest change to re-query the catalog, so each
// channel buffers one change and newer changes replace a pending one.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan Change]struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{listeners: make(map[chan Change]struct{})}
}

// Subscribe returns a channel receiving changes. Call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Change {
	ch := make(chan Change, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (n *Notifier) Unsubscribe(ch chan Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Listeners returns the number of subscribed listeners.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Broadcast sends c to every listener without blocking.
func (n *Notifier) Broadcast(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.listeners {
		select {
		case ch <- c:
			continue
		default:
		}
		// Drop the pending change in favor of the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}

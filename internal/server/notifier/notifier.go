// Package notifier fans validation events out to streaming HTTP clients.
package notifier

import (
	"sync"

	"github.com/structview/structview/pkg/core"
)

// Notifier broadcasts report summaries to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan *core.ReportSummary]struct{}
	buffer    int
}

// New creates a Notifier whose subscriber channels hold up to buffer
// pending events.
func New(buffer int) *Notifier {
	if buffer < 1 {
		buffer = 1
	}
	return &Notifier{
		listeners: make(map[chan *core.ReportSummary]struct{}),
		buffer:    buffer,
	}
}

// Subscribe returns a channel that receives a summary per recorded validation.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan *core.ReportSummary {
	ch := make(chan *core.ReportSummary, n.buffer)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan *core.ReportSummary) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast delivers s to every listener. A listener whose buffer is full
// misses the event.
func (n *Notifier) Broadcast(s *core.ReportSummary) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- s:
		default:
		}
	}
}

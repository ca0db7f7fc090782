// Package sse streams index change notifications as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types written to the stream.
const (
	TypeSynced  = "index.synced"
	TypeChanged = "documents.changed"
)

// SyncSummary is the payload of an index.synced event: one per sync run,
// listing every path the run touched.
type SyncSummary struct {
	RunID   string   `json:"run_id"`
	Indexed []string `json:"indexed"`
	Removed []string `json:"removed"`
	Failed  []string `json:"failed"`
}

// Changed reports whether the run altered the index.
func (s SyncSummary) Changed() bool {
	return len(s.Indexed) > 0 || len(s.Removed) > 0
}

type hub struct {
	clients     map[chan []byte]struct{}
	lastChanged time.Time
}

func (h *hub) send(msg []byte) {
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}
}

// Broker fans events out to connected SSE clients.
//
// The client set lives in a single loop goroutine; every method hands it a
// closure over ops and the loop runs closures one at a time.
type Broker struct {
	throttle time.Duration

	ops  chan func(*hub)
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewBroker creates a broker that emits at most one documents.changed event
// per throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		ops:      make(chan func(*hub)),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)
	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.quit:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// run hands op to the loop. It returns false once the broker is closed.
func (b *Broker) run(op func(*hub)) bool {
	select {
	case b.ops <- op:
		return true
	case <-b.done:
		return false
	}
}

// encode renders one event in the text/event-stream wire format.
func encode(typ string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", typ, payload), nil
}

// Close stops the loop and closes every client channel. It is safe to call twice.
func (b *Broker) Close() {
	b.once.Do(func() { close(b.quit) })
	<-b.done
}

// Subscribe adds a new client and returns its channel. The channel is
// already closed when the broker is.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if !b.run(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.run(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := make(chan int, 1)
	if !b.run(func(h *hub) { n <- len(h.clients) }) {
		return 0
	}
	return <-n
}

// Publish sends an event of type typ with data encoded as JSON to all clients.
func (b *Broker) Publish(typ string, data any) error {
	msg, err := encode(typ, data)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", typ, err)
	}
	b.run(func(h *hub) { h.send(msg) })
	return nil
}

// PublishSync announces a finished sync run as one index.synced event. Runs
// that changed the index are followed by documents.changed, at most once
// per throttle interval.
func (b *Broker) PublishSync(s SyncSummary) error {
	synced, err := encode(TypeSynced, s)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", TypeSynced, err)
	}
	changed, _ := encode(TypeChanged, map[string]string{"run_id": s.RunID})
	b.run(func(h *hub) {
		h.send(synced)
		if !s.Changed() {
			return
		}
		if now := time.Now(); now.Sub(h.lastChanged) >= b.throttle {
			h.lastChanged = now
			h.send(changed)
		}
	})
	return nil
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

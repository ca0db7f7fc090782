package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// next waits for one message on ch.
func next(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after unsubscribe = %d, want 0", n)
	}
	if _, open := <-ch; open {
		t.Error("unsubscribed channel still open")
	}
}

func TestPublish_Framing(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if err := b.Publish("custom", map[string]int{"n": 2}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got, want := next(t, ch), "event: custom\ndata: {\"n\":2}\n\n"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if err := b.Publish("bad", make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestPublishSync(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	_ = b.PublishSync(SyncSummary{RunID: "r1", Indexed: []string{"a.org"}, Removed: []string{"b.md"}, Failed: []string{}})
	synced := next(t, ch)
	if !strings.HasPrefix(synced, "event: index.synced\n") {
		t.Fatalf("first event = %q", synced)
	}
	for _, want := range []string{`"run_id":"r1"`, `"indexed":["a.org"]`, `"removed":["b.md"]`, `"failed":[]`} {
		if !strings.Contains(synced, want) {
			t.Errorf("index.synced missing %s: %q", want, synced)
		}
	}
	if got := next(t, ch); got != "event: documents.changed\ndata: {\"run_id\":\"r1\"}\n\n" {
		t.Errorf("second event = %q", got)
	}

	// Inside the throttle interval a second changing run only reports itself.
	_ = b.PublishSync(SyncSummary{RunID: "r2", Indexed: []string{"c.org"}})
	next(t, ch)
	time.Sleep(20 * time.Millisecond)
	if rest := drain(ch); len(rest) != 0 {
		t.Errorf("throttled run produced %q", rest)
	}
}

func TestPublishSync_NoChanges(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	_ = b.PublishSync(SyncSummary{RunID: "r", Failed: []string{"bad.org"}})
	if got := next(t, ch); !strings.Contains(got, `"failed":["bad.org"]`) {
		t.Errorf("event = %q", got)
	}
	time.Sleep(20 * time.Millisecond)
	if rest := drain(ch); len(rest) != 0 {
		t.Errorf("run without changes produced %q", rest)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("clients = %d, want 1 from handler", n)
	}

	_ = b.PublishSync(SyncSummary{RunID: "x", Indexed: []string{"x.org"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, "event: index.synced") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("clients = %d after disconnect", n)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		_ = b.Publish("test", i)
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(drain(ch)); n != 64 {
		t.Errorf("delivered %d events, want 64", n)
	}
}

func TestClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("clients after close = %d", n)
	}
	if _, open := <-b.Subscribe(); open {
		t.Error("Subscribe after close returned an open channel")
	}

	// No-ops after close.
	_ = b.Publish(TypeSynced, nil)
	_ = b.PublishSync(SyncSummary{})
	b.Unsubscribe(ch)
	b.Close()
}

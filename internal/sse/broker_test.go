package sse

import (
	"bufio"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func waitForClients(t *testing.T, b *Broker, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, b.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	waitForClients(t, b, 2)

	b.Publish(EventDataChanged)

	want := "event: data.changed\ndata: {}\n\n"
	for i, ch := range []chan []byte{ch1, ch2} {
		select {
		case msg := <-ch:
			if string(msg) != want {
				t.Errorf("client %d: expected %q, got %q", i, want, msg)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d never received the event", i)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	waitForClients(t, b, 1)

	b.Unsubscribe(ch)
	waitForClients(t, b, 0)

	if _, ok := <-ch; ok {
		t.Error("expected channel closed after unsubscribe")
	}
}

func TestCloseClosesClients(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	waitForClients(t, b, 1)

	b.Close()
	if _, ok := <-ch; ok {
		t.Error("expected channel closed after broker close")
	}

	// Post-close calls are harmless no-ops.
	b.Publish(EventDataChanged)
	b.Unsubscribe(ch)
	if got := b.Subscribe(); got == nil {
		t.Error("expected a closed channel, not nil")
	}
	if b.ClientCount() != 0 {
		t.Errorf("expected 0 clients after close, got %d", b.ClientCount())
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ts := httptest.NewServer(b)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected event-stream content type, got %q", ct)
	}

	waitForClients(t, b, 1)
	b.Publish(EventPushFailed)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, "event: sync.push_failed") {
		t.Errorf("expected push_failed event line, got %q", line)
	}
}

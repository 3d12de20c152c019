package goGuard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type collectSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *collectSink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectSink) snapshot() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestAuditDispatcherDeliversAndDrains(t *testing.T) {
	sink := &collectSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	}
	d.Close()

	if got := len(sink.snapshot()); got != 5 {
		t.Fatalf("delivered %d events, want 5", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestAuditDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &collectSink{})
	if d != nil {
		t.Fatal("disabled audit must not start a dispatcher")
	}
	// Emitting through a nil dispatcher is safe.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(context.Context, AuditEvent) {
	<-s.release
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer; the rest
	// must be counted as dropped without blocking this goroutine.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a full buffer")
	}

	close(sink.release)
	d.Close()
}

func TestEngineEmitsAuditTrail(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := newMockStore()
	engine := newTestEngine(t, store, rdb)
	sink := &collectSink{}
	engine.audit = newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64, DropIfFull: false}, sink)
	seedUser(t, store, engine, "alice", "correct-horse-9")

	ctx := context.Background()
	if _, err := engine.Authenticate(ctx, "alice", "correct-horse-9"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if _, err := engine.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	engine.Close()

	events := sink.snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].EventType != auditEventLoginSuccess || !events[0].Success {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].EventType != auditEventLoginFailure || events[1].Success {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[1].Error != string(auditErrInvalidCredentials) {
		t.Fatalf("failure event error = %q", events[1].Error)
	}
	if events[1].Metadata["reason"] != "wrong_password" {
		t.Fatalf("failure metadata = %v", events[1].Metadata)
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventGuardDenied,
		SessionID: "sess-1",
		Metadata:  map[string]string{"stage": "permission"},
	})

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["event_type"] != auditEventGuardDenied {
		t.Fatalf("event_type = %v", decoded["event_type"])
	}
}

func TestChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	sink.Emit(context.Background(), AuditEvent{EventType: auditEventSessionLogin})

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventSessionLogin {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("expected buffered event")
	}
}

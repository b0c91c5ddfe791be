package session

import (
	"testing"
	"time"
)

func TestNewSessionStartsConnected(t *testing.T) {
	s := New("user-1")
	if !s.Connected() {
		t.Fatal("expected new session to start connected")
	}
	if s.StaleFor(time.Minute) {
		t.Fatal("expected fresh session to not be stale")
	}
}

func TestMarkDisconnectedAndReconnect(t *testing.T) {
	s := New("user-1")
	s.MarkDisconnected()
	if s.Connected() {
		t.Fatal("expected session to be disconnected")
	}
	old := s.Outbound()
	fresh := s.Rebind()
	if !s.Connected() {
		t.Fatal("expected rebind to mark connected")
	}
	if fresh == old {
		t.Fatal("expected rebind to replace the outbound channel")
	}
}

func TestSendEnqueues(t *testing.T) {
	s := New("user-1")
	if ok := s.Send([]byte("hello")); !ok {
		t.Fatal("expected send to succeed on a fresh channel")
	}
	select {
	case msg := <-s.Outbound():
		if string(msg) != "hello" {
			t.Fatalf("unexpected message: %s", msg)
		}
	default:
		t.Fatal("expected message to be enqueued")
	}
}

func TestSendMarksDisconnectedWhenFull(t *testing.T) {
	s := New("user-1")
	for i := 0; i < outboundBuffer; i++ {
		if !s.Send([]byte("x")) {
			t.Fatalf("unexpected early failure at i=%d", i)
		}
	}
	if ok := s.Send([]byte("overflow")); ok {
		t.Fatal("expected send to fail once the buffer is full")
	}
	if s.Connected() {
		t.Fatal("expected a failed enqueue to mark the seat disconnected")
	}
}

func TestTouchUpdatesLastPing(t *testing.T) {
	s := New("user-1")
	past := time.Now().Add(-time.Hour)
	s.Touch(past)
	if !s.StaleFor(time.Minute) {
		t.Fatal("expected session touched an hour ago to be stale at 1m threshold")
	}
}

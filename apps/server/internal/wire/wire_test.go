package wire

import (
	"encoding/json"
	"testing"
)

func TestParseIncomingAuth(t *testing.T) {
	in, err := ParseIncoming([]byte(`{"token":"abc123"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Auth == nil || in.Auth.Token != "abc123" {
		t.Fatalf("expected Auth message, got %+v", in)
	}
}

func TestParseIncomingManage(t *testing.T) {
	in, err := ParseIncoming([]byte(`{"op":"play_card","rank":"J","suit":"C"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Manage == nil || in.Manage.Op != OpPlayCard {
		t.Fatalf("expected Manage message with op=play_card, got %+v", in)
	}
	if in.Manage.Rank == nil || *in.Manage.Rank != "J" {
		t.Fatal("expected rank field to round-trip")
	}
}

func TestOutboundEventDiscriminator(t *testing.T) {
	evt := NewEyeUpdatedEvent(5, 3)
	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["event"] != "eye_updated" {
		t.Fatalf("expected event=eye_updated, got %v", decoded["event"])
	}
	if decoded["team_a"].(float64) != 5 {
		t.Fatalf("expected team_a=5, got %v", decoded["team_a"])
	}
}

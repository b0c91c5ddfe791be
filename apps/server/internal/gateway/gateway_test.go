package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	ijauth "squirrel/apps/server/internal/auth"
	"squirrel/apps/server/internal/matchmaker"
)

var testSecret = []byte("gateway-test-secret")

func dialAuthed(t *testing.T, url string, accountID uint64) (*websocket.Conn, map[string]any) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	token, _, err := ijauth.IssueToken(testSecret, accountID, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"token": token}); err != nil {
		t.Fatalf("write auth failed: %v", err)
	}

	evt := readEvent(t, conn)
	if evt["event"] != "success_login" {
		t.Fatalf("expected success_login, got %v", evt)
	}
	return conn, evt
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return decoded
}

// TestRoomFormationOverWebSocket exercises scenario S1 end to end through
// the gateway: four distinct clients auth, each sends find_game, and each
// receives game_start with positions north/east/south/west sharing one
// room_id.
func TestRoomFormationOverWebSocket(t *testing.T) {
	m := matchmaker.New()
	gw := New(m, testSecret)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	defer srv.Close()

	conns := make([]*websocket.Conn, 4)
	for i := range conns {
		conn, _ := dialAuthed(t, srv.URL, uint64(1000+i))
		conns[i] = conn
		defer conn.Close()
	}

	for _, conn := range conns {
		if err := conn.WriteJSON(map[string]string{"op": "find_game"}); err != nil {
			t.Fatalf("write find_game failed: %v", err)
		}
	}

	wantPositions := []string{"north", "east", "south", "west"}
	var roomID string
	for i, conn := range conns {
		evt := readEvent(t, conn)
		if evt["event"] != "game_start" {
			t.Fatalf("expected game_start for client %d, got %v", i, evt)
		}
		if evt["position"] != wantPositions[i] {
			t.Fatalf("expected position %s, got %v", wantPositions[i], evt["position"])
		}
		if roomID == "" {
			roomID = evt["room_id"].(string)
		} else if evt["room_id"] != roomID {
			t.Fatal("expected all four clients to share one room_id")
		}
	}

	// Every client must also learn its dealt hand, and North alone gets the
	// opening your_turn.
	for i, conn := range conns {
		evt := readEvent(t, conn)
		if evt["event"] != "your_hand" {
			t.Fatalf("expected your_hand for client %d, got %v", i, evt)
		}
		cards, ok := evt["cards"].([]any)
		if !ok || len(cards) != 8 {
			t.Fatalf("expected an 8-card hand for client %d, got %v", i, evt["cards"])
		}
	}
	northEvt := readEvent(t, conns[0])
	if northEvt["event"] != "your_turn" {
		t.Fatalf("expected your_turn for North after the initial deal, got %v", northEvt)
	}
}

// TestInvalidTokenClosesConnection covers §4.6's PreAuth/invalid-auth row.
func TestInvalidTokenClosesConnection(t *testing.T) {
	m := matchmaker.New()
	gw := New(m, testSecret)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"token": "not-a-valid-jwt"}); err != nil {
		t.Fatalf("write auth failed: %v", err)
	}

	evt := readEvent(t, conn)
	if evt["event"] != "error" || evt["detail"] != "Invalid token" {
		t.Fatalf("expected error{detail=Invalid token}, got %v", evt)
	}
}

// TestPlayCardRejectsBeforeFindGame covers the NotAuthed-equivalent "not in
// a room" rejection of a play_card sent before find_game completes.
func TestPlayCardRejectsBeforeFindGame(t *testing.T) {
	m := matchmaker.New()
	gw := New(m, testSecret)
	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	defer srv.Close()

	conn, _ := dialAuthed(t, srv.URL, 42)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"op": "play_card", "rank": "7", "suit": "c"}); err != nil {
		t.Fatalf("write play_card failed: %v", err)
	}

	evt := readEvent(t, conn)
	if evt["event"] != "error" {
		t.Fatalf("expected error event, got %v", evt)
	}
}

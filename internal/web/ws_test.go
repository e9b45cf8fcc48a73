package web

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"xianxia/internal/game"
)

func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func currentChapter(srv *Server) string {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.Play.State().NodeID
}

func exchange(t *testing.T, conn *websocket.Conn, msg string) wsReply {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply wsReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func TestWS_ChapterAndPlayerUpdates(t *testing.T) {
	srv := testServer(t)
	conn := dialWS(t, srv)

	reply := exchange(t, conn, `{"type":"chapter_update","payload":{"chapterId":"hall"}}`)
	if reply.Type != "view" || reply.View == nil || reply.View.ChapterID != "hall" {
		t.Fatalf("chapter update: unexpected reply %+v", reply)
	}

	reply = exchange(t, conn, `{"type":"player_update","payload":{"effects":{"cultivation":12,"item":"Jade Slip"}}}`)
	if reply.Type != "view" || reply.View == nil {
		t.Fatalf("player update: unexpected reply %+v", reply)
	}
	if got := reply.View.Status.Num(game.AttrCultivation); got != 12 {
		t.Errorf("cultivation: expected 12, got %v", got)
	}
	if inv := reply.View.Inventory; len(inv) != 1 || inv[0] != "Jade Slip" {
		t.Errorf("inventory: got %v", inv)
	}
	if at := currentChapter(srv); at != "hall" {
		t.Errorf("playthrough not updated, at %q", at)
	}
}

func TestWS_DropsBadMessages(t *testing.T) {
	srv := testServer(t)
	conn := dialWS(t, srv)

	for _, msg := range []string{
		`not json`,
		`{"type":"weather_update","payload":{}}`,
		`{"type":"chapter_update","payload":{"chapterId":"nowhere"}}`,
		`{"type":"player_update","payload":{}}`,
	} {
		reply := exchange(t, conn, msg)
		if reply.Type != "dropped" || reply.Error == "" {
			t.Errorf("%s: expected a dropped reply, got %+v", msg, reply)
		}
	}
	if at := currentChapter(srv); at != "start" {
		t.Errorf("dropped messages changed state: at %q", at)
	}
}

func TestWS_DropsDuringCombat(t *testing.T) {
	srv := testServer(t)
	if err := srv.Play.Choose(1); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	conn := dialWS(t, srv)

	reply := exchange(t, conn, `{"type":"chapter_update","payload":{"chapterId":"hall"}}`)
	if reply.Type != "dropped" {
		t.Errorf("expected drop mid-combat, got %+v", reply)
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if !srv.Play.InCombat() {
		t.Error("encounter should still be running")
	}
}

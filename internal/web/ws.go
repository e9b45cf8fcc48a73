package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"xianxia/internal/play"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsReply answers every remote message: the resulting view, or why the
// message was dropped.
type wsReply struct {
	Type  string     `json:"type"` // "view" | "dropped"
	Error string     `json:"error,omitempty"`
	View  *play.View `json:"view,omitempty"`
}

// handleWS accepts remote sync messages. Each one is applied to the
// playthrough under the same lock as HTTP steps.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	logger := s.Logger.With().Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("remote sync connected")

	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
		logger.Info().Msg("remote sync disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		reply := s.applyRemote(raw)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn().Err(err).Msg("websocket write error")
			return
		}
	}
}

func (s *Server) applyRemote(raw []byte) wsReply {
	msg, err := play.ParseRemote(raw)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("remote message dropped")
		return wsReply{Type: "dropped", Error: err.Error()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Play.ApplyRemote(msg); err != nil {
		return wsReply{Type: "dropped", Error: err.Error()}
	}
	v := s.Play.View()
	return wsReply{Type: "view", View: &v}
}

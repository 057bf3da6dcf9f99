package stream

import (
	"github.com/gofiber/websocket/v2"
)

// WSWriter emits protocol events as JSON frames over a websocket. The
// frame shape mirrors the SSE contract: {"event": "...", "data": {...}}.
type WSWriter struct {
	conn *websocket.Conn
}

var _ Sink = &WSWriter{}

func NewWSWriter(conn *websocket.Conn) *WSWriter {
	return &WSWriter{conn: conn}
}

type wsFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func (s *WSWriter) write(event string, payload interface{}) error {
	return s.conn.WriteJSON(wsFrame{Event: event, Data: payload})
}

func (s *WSWriter) Token(event TokenEvent) error {
	return s.write(EventToken, event)
}

func (s *WSWriter) Final(event FinalEvent) error {
	return s.write(EventFinal, event)
}

func (s *WSWriter) End() error {
	return s.write(EventEnd, struct{}{})
}

package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
)

// SSEWriter emits protocol events as server-sent events on a buffered
// response stream. Each event is flushed immediately so the widget sees
// tokens as they are produced.
type SSEWriter struct {
	w *bufio.Writer
}

var _ Sink = &SSEWriter{}

func NewSSEWriter(w *bufio.Writer) *SSEWriter {
	return &SSEWriter{w: w}
}

func (s *SSEWriter) write(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *SSEWriter) Token(event TokenEvent) error {
	return s.write(EventToken, event)
}

func (s *SSEWriter) Final(event FinalEvent) error {
	return s.write(EventFinal, event)
}

func (s *SSEWriter) End() error {
	return s.write(EventEnd, struct{}{})
}

package stream

// Sink receives the protocol events of one answer stream. Implementations
// own the transport (SSE, websocket) or record events for tests.
type Sink interface {
	Token(event TokenEvent) error
	Final(event FinalEvent) error
	End() error
}

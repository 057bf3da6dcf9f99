package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the chat pipeline.
const (
	TypeChatCompleted    = "CHAT_COMPLETED"
	TypeDocumentIngested = "DOCUMENT_INGESTED"
)

// NewChatCompleted records one finished answer stream for analytics.
func NewChatCompleted(websiteId, chatId, requestId string, latencyMs int64, tokensContext int) Event {
	return BaseEvent{
		Type: TypeChatCompleted,
		Data: map[string]interface{}{
			"website_id":     websiteId,
			"chat_id":        chatId,
			"request_id":     requestId,
			"latency_ms":     latencyMs,
			"tokens_context": tokensContext,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested records one document made searchable.
func NewDocumentIngested(websiteId, documentId string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"website_id":  websiteId,
			"document_id": documentId,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

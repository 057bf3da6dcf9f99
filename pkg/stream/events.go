package stream

import "site-assistant-be/pkg/llm"

// Event names on the wire.
const (
	EventToken = "token"
	EventFinal = "final"
	EventEnd   = "end"
)

// Error codes carried inside a failing final event.
const (
	CodeInvalidOrigin = "INVALID_ORIGIN"
	CodeRateLimited   = "RATE_LIMITED"
	CodeHTTPError     = "HTTP_ERROR"
	CodeStreamError   = "STREAM_ERROR"
	CodeInternal      = "INTERNAL"
)

// TokenEvent is one model fragment. Seq starts at 1 and is gap-free.
type TokenEvent struct {
	Text string `json:"text"`
	Seq  int    `json:"seq"`
}

// ErrorPayload describes a terminal failure inside a final event.
type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id"`
}

// FinalEvent closes a successful answer, or carries Error on failure.
type FinalEvent struct {
	Message       string        `json:"message,omitempty"`
	UsedFiles     []string      `json:"used_files,omitempty"`
	TokensContext int           `json:"tokens_context"`
	LatencyMs     int64         `json:"latency_ms"`
	Usage         *llm.Usage    `json:"usage"`
	RequestID     string        `json:"request_id"`
	Error         *ErrorPayload `json:"error,omitempty"`
}

// NewErrorFinal builds the failing variant of a final event.
func NewErrorFinal(code, message string, retryable bool, requestId string) FinalEvent {
	return FinalEvent{
		RequestID: requestId,
		Error: &ErrorPayload{
			Code:      code,
			Message:   message,
			Retryable: retryable,
			RequestID: requestId,
		},
	}
}

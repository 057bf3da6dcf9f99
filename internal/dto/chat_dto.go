package dto

import (
	"time"

	"site-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

type ChatStreamRequest struct {
	WebsiteId string `json:"website_id" validate:"required,uuid4"`
	SessionId string `json:"session_id" validate:"required,uuid4"`
	VisitorId string `json:"visitor_id" validate:"omitempty,uuid4"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
	PageURL   string `json:"page_url,omitempty" validate:"omitempty,max=2048"`
}

// RequestMeta carries per-request transport facts the guardrails need.
type RequestMeta struct {
	Origin    string
	ClientIP  string
	RequestId string
}

type ChatQueryRequest struct {
	WebsiteId string `json:"website_id" validate:"required,uuid4"`
	SessionId string `json:"session_id" validate:"required,uuid4"`
	VisitorId string `json:"visitor_id" validate:"omitempty,uuid4"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
	PageURL   string `json:"page_url,omitempty" validate:"omitempty,max=2048"`
}

type ChatQueryResponse struct {
	Message       string     `json:"message"`
	UsedFiles     []string   `json:"used_files"`
	TokensContext int        `json:"tokens_context"`
	LatencyMs     int64      `json:"latency_ms"`
	Usage         *llm.Usage `json:"usage"`
	RequestId     string     `json:"request_id"`
}

type ChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

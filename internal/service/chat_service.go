package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/pkg/events"
	"site-assistant-be/pkg/llm"
	"site-assistant-be/pkg/nats"
	"site-assistant-be/pkg/rag/prompt"
	"site-assistant-be/pkg/rag/retrieval"
	"site-assistant-be/pkg/stream"

	"github.com/google/uuid"
)

const (
	historyLimit = 20

	// Shown when no model credential is configured. Emitted as a single
	// token so the widget's stream handling still works end to end.
	unconfiguredReply = "The assistant is not fully configured yet. Please try again later."
)

// IChatService runs the answer pipeline for the embedded widget.
type IChatService interface {
	// StreamAnswer drives one chat interaction and writes every protocol
	// event to sink. It never returns an error: faults become final
	// events and the closing end event is emitted on every path.
	StreamAnswer(ctx context.Context, req *dto.ChatStreamRequest, meta *dto.RequestMeta, sink stream.Sink)

	// Query answers without streaming, for server-side integrations.
	Query(ctx context.Context, req *dto.ChatQueryRequest, meta *dto.RequestMeta) (*dto.ChatQueryResponse, error)

	// History returns the recent messages of a session so the widget can
	// restore the transcript after a page reload.
	History(ctx context.Context, websiteId uuid.UUID, sessionId string) ([]dto.ChatHistoryResponse, error)
}

// Guard abstractions are narrow so tests can stub them.
type OriginChecker interface {
	Allowed(ctx context.Context, websiteId uuid.UUID, origin string) (bool, error)
}

type RateLimiter interface {
	Allow(key string) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	retriever     *retrieval.Retriever
	originChecker OriginChecker
	rateLimiter   RateLimiter
	llmProvider   llm.LLMProvider // nil when no credential is configured
	publisher     EventPublisher  // nil when NATS is unavailable
	log           logger.ILogger
	streamTimeout time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever *retrieval.Retriever,
	originChecker OriginChecker,
	rateLimiter RateLimiter,
	llmProvider llm.LLMProvider,
	publisher *nats.Publisher,
	log logger.ILogger,
	streamTimeout time.Duration,
) IChatService {
	if streamTimeout <= 0 {
		streamTimeout = 120 * time.Second
	}
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return &chatService{
		uowFactory:    uowFactory,
		retriever:     retriever,
		originChecker: originChecker,
		rateLimiter:   rateLimiter,
		llmProvider:   llmProvider,
		publisher:     pub,
		log:           log,
		streamTimeout: streamTimeout,
	}
}

// validatedRequest holds the parsed identifiers after VALIDATING.
type validatedRequest struct {
	websiteId uuid.UUID
	sessionId string
	visitorId string
	message   string
	pageURL   string
}

func (s *chatService) StreamAnswer(ctx context.Context, req *dto.ChatStreamRequest, meta *dto.RequestMeta, sink stream.Sink) {
	started := time.Now()

	requestId := meta.RequestId
	if requestId == "" {
		requestId = uuid.NewString()
	}

	// The closing event is unconditional. Every exit path below, fault
	// or success, runs through this.
	defer func() {
		if err := sink.End(); err != nil {
			s.log.Debug("chat", "end event write failed", map[string]interface{}{
				"request_id": requestId,
				"error":      err.Error(),
			})
		}
	}()

	fail := func(code, message string, retryable bool) {
		if err := sink.Final(stream.NewErrorFinal(code, message, retryable, requestId)); err != nil {
			s.log.Debug("chat", "error final write failed", map[string]interface{}{
				"request_id": requestId,
				"error":      err.Error(),
			})
		}
	}

	// VALIDATING
	vreq, verr := validateStreamRequest(req)
	if verr != "" {
		fail(stream.CodeHTTPError, verr, false)
		return
	}

	// GUARDING
	allowed, err := s.originChecker.Allowed(ctx, vreq.websiteId, meta.Origin)
	if err != nil {
		s.log.Error("chat", "origin check failed", map[string]interface{}{
			"request_id": requestId,
			"website_id": vreq.websiteId.String(),
			"error":      err.Error(),
		})
		fail(stream.CodeInternal, "could not verify request origin", true)
		return
	}
	if !allowed {
		fail(stream.CodeInvalidOrigin, "origin not allowed for this website", false)
		return
	}

	ip := meta.ClientIP
	if ip == "" {
		ip = "unknown"
	}
	if !s.rateLimiter.Allow(vreq.websiteId.String() + ":" + ip) {
		fail(stream.CodeRateLimited, "too many requests, slow down", true)
		return
	}

	// RETRIEVING: any retrieval failure degrades to an empty context so
	// the visitor still gets an answer.
	contextText, usedDocIds, err := s.retriever.GatherContext(ctx, vreq.websiteId, vreq.message, retrieval.DefaultTopN)
	if err != nil {
		s.log.Warn("chat", "retrieval failed, answering without context", map[string]interface{}{
			"request_id": requestId,
			"website_id": vreq.websiteId.String(),
			"error":      err.Error(),
		})
		contextText, usedDocIds = "", nil
	}

	// SESSION_READY
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := s.getOrCreateChat(ctx, uow, vreq)
	if err != nil {
		s.log.Error("chat", "session setup failed", map[string]interface{}{
			"request_id": requestId,
			"website_id": vreq.websiteId.String(),
			"error":      err.Error(),
		})
		fail(stream.CodeInternal, "could not prepare chat session", true)
		return
	}

	// History is read before the user message is written, so a message
	// never sees itself in its own history.
	history, err := uow.MessageRepository().FindRecentByChat(
		ctx, chat.Id, historyLimit,
		[]string{entity.MessageRoleUser, entity.MessageRoleAssistant},
	)
	if err != nil {
		s.log.Warn("chat", "history load failed, continuing without it", map[string]interface{}{
			"request_id": requestId,
			"chat_id":    chat.Id.String(),
			"error":      err.Error(),
		})
		history = nil
	}

	s.persistMessage(ctx, uow, chat.Id, entity.MessageRoleUser, vreq.message, requestId)

	// STREAMING
	messages := prompt.NewBuilder(contextText, history, vreq.message).Build()

	streamCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	defer cancel()

	var fragments []string
	var usage *llm.Usage
	seq := 0

	emit := func(text string) error {
		seq++
		fragments = append(fragments, text)
		return sink.Token(stream.TokenEvent{Text: text, Seq: seq})
	}

	if s.llmProvider == nil {
		if err := emit(unconfiguredReply); err != nil {
			return
		}
	} else {
		usage, err = s.llmProvider.ChatStream(streamCtx, messages, emit)
		if err != nil {
			if ctx.Err() != nil {
				// Caller disconnected; stop producing events.
				s.log.Debug("chat", "stream cancelled by caller", map[string]interface{}{
					"request_id": requestId,
				})
				return
			}
			s.log.Error("chat", "model stream failed", map[string]interface{}{
				"request_id": requestId,
				"chat_id":    chat.Id.String(),
				"error":      err.Error(),
			})
			fail(stream.CodeStreamError, "answer generation failed", true)
			return
		}
	}

	// FINALIZING
	answer := strings.Join(fragments, "")
	s.persistMessage(ctx, uow, chat.Id, entity.MessageRoleAssistant, answer, requestId)

	usedFiles := make([]string, len(usedDocIds))
	for i, id := range usedDocIds {
		usedFiles[i] = id.String()
	}

	latency := time.Since(started).Milliseconds()
	final := stream.FinalEvent{
		Message:       answer,
		UsedFiles:     usedFiles,
		TokensContext: len(contextText),
		LatencyMs:     latency,
		Usage:         usage,
		RequestID:     requestId,
	}
	if err := sink.Final(final); err != nil {
		s.log.Debug("chat", "final event write failed", map[string]interface{}{
			"request_id": requestId,
			"error":      err.Error(),
		})
		return
	}

	s.publishCompleted(vreq.websiteId, chat.Id, requestId, latency, len(contextText))
}

func validateStreamRequest(req *dto.ChatStreamRequest) (*validatedRequest, string) {
	websiteId, err := uuid.Parse(req.WebsiteId)
	if err != nil || websiteId == uuid.Nil {
		return nil, "website_id must be a valid UUID"
	}
	if _, err := uuid.Parse(req.SessionId); err != nil {
		return nil, "session_id must be a valid UUID"
	}
	if req.VisitorId != "" {
		if _, err := uuid.Parse(req.VisitorId); err != nil {
			return nil, "visitor_id must be a valid UUID"
		}
	}
	message := req.Message
	if length := utf8.RuneCountInString(message); length < 1 || length > 4000 {
		return nil, "message must be between 1 and 4000 characters"
	}
	return &validatedRequest{
		websiteId: websiteId,
		sessionId: req.SessionId,
		visitorId: req.VisitorId,
		message:   message,
		pageURL:   req.PageURL,
	}, ""
}

// getOrCreateChat finds the chat for (website, session) or creates it.
// A lost create race falls back to re-selecting the winner's row.
func (s *chatService) getOrCreateChat(ctx context.Context, uow unitofwork.UnitOfWork, vreq *validatedRequest) (*entity.Chat, error) {
	chats := uow.ChatRepository()

	chat, err := chats.FindOne(ctx,
		specification.OwnedByWebsite{WebsiteID: vreq.websiteId},
		specification.BySessionID{SessionID: vreq.sessionId},
	)
	if err != nil {
		return nil, err
	}

	if chat == nil {
		chat = &entity.Chat{
			Id:        uuid.New(),
			WebsiteId: vreq.websiteId,
			SessionId: vreq.sessionId,
			VisitorId: vreq.visitorId,
			PageURL:   vreq.pageURL,
			StartedAt: time.Now(),
		}
		if createErr := chats.Create(ctx, chat); createErr != nil {
			// A concurrent request may have created it first.
			chat, err = chats.FindOne(ctx,
				specification.OwnedByWebsite{WebsiteID: vreq.websiteId},
				specification.BySessionID{SessionID: vreq.sessionId},
			)
			if err != nil {
				return nil, err
			}
			if chat == nil {
				return nil, createErr
			}
		}
	}

	// Backfill the visitor id when the chat was started anonymously.
	if chat.VisitorId == "" && vreq.visitorId != "" {
		if err := chats.UpdateVisitor(ctx, chat.Id, vreq.visitorId); err != nil {
			s.log.Warn("chat", "visitor backfill failed", map[string]interface{}{
				"chat_id": chat.Id.String(),
				"error":   err.Error(),
			})
		} else {
			chat.VisitorId = vreq.visitorId
		}
	}

	return chat, nil
}

// persistMessage writes a message best-effort. A store failure is logged
// and discarded so the stream is never interrupted by persistence.
func (s *chatService) persistMessage(ctx context.Context, uow unitofwork.UnitOfWork, chatId uuid.UUID, role, content, requestId string) {
	msg := &entity.Message{
		Id:        uuid.New(),
		ChatId:    chatId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		s.log.Warn("chat", "message persistence failed", map[string]interface{}{
			"request_id": requestId,
			"chat_id":    chatId.String(),
			"role":       role,
			"error":      err.Error(),
		})
	}
}

func (s *chatService) publishCompleted(websiteId, chatId uuid.UUID, requestId string, latencyMs int64, tokensContext int) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	event := events.NewChatCompleted(websiteId.String(), chatId.String(), requestId, latencyMs, tokensContext)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("chat", "analytics publish failed", map[string]interface{}{
			"request_id": requestId,
			"error":      err.Error(),
		})
	}
}

// Query runs the same pipeline without streaming. Guard failures are
// returned as errors for the HTTP error handler to map.
func (s *chatService) Query(ctx context.Context, req *dto.ChatQueryRequest, meta *dto.RequestMeta) (*dto.ChatQueryResponse, error) {
	collector := &collectingSink{}
	streamReq := &dto.ChatStreamRequest{
		WebsiteId: req.WebsiteId,
		SessionId: req.SessionId,
		VisitorId: req.VisitorId,
		Message:   req.Message,
		PageURL:   req.PageURL,
	}

	s.StreamAnswer(ctx, streamReq, meta, collector)

	final := collector.final
	if final == nil {
		return nil, errInternal("stream produced no final event")
	}
	if final.Error != nil {
		return nil, errForCode(final.Error)
	}

	return &dto.ChatQueryResponse{
		Message:       final.Message,
		UsedFiles:     final.UsedFiles,
		TokensContext: final.TokensContext,
		LatencyMs:     final.LatencyMs,
		Usage:         final.Usage,
		RequestId:     final.RequestID,
	}, nil
}

func (s *chatService) History(ctx context.Context, websiteId uuid.UUID, sessionId string) ([]dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.OwnedByWebsite{WebsiteID: websiteId},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return []dto.ChatHistoryResponse{}, nil
	}

	messages, err := uow.MessageRepository().FindRecentByChat(
		ctx, chat.Id, historyLimit,
		[]string{entity.MessageRoleUser, entity.MessageRoleAssistant},
	)
	if err != nil {
		return nil, err
	}

	history := make([]dto.ChatHistoryResponse, len(messages))
	for i, msg := range messages {
		history[i] = dto.ChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return history, nil
}

// StreamFault carries a protocol error payload out of Query so the
// controller can map it onto an HTTP status.
type StreamFault struct {
	Payload *stream.ErrorPayload
}

func (e *StreamFault) Error() string {
	return e.Payload.Code + ": " + e.Payload.Message
}

func errForCode(payload *stream.ErrorPayload) error {
	return &StreamFault{Payload: payload}
}

func errInternal(message string) error {
	return &StreamFault{Payload: &stream.ErrorPayload{
		Code:      stream.CodeInternal,
		Message:   message,
		Retryable: true,
	}}
}

// collectingSink buffers the stream so Query can return one response.
type collectingSink struct {
	final *stream.FinalEvent
}

func (c *collectingSink) Token(stream.TokenEvent) error { return nil }

func (c *collectingSink) Final(event stream.FinalEvent) error {
	c.final = &event
	return nil
}

func (c *collectingSink) End() error { return nil }

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/contract"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/pkg/embedding"
	"site-assistant-be/pkg/llm"
	"site-assistant-be/pkg/rag/retrieval"
	"site-assistant-be/pkg/stream"

	"github.com/google/uuid"
)

// --- test doubles ---

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type recordedEvent struct {
	kind  string
	token stream.TokenEvent
	final stream.FinalEvent
}

type recordingSink struct {
	events []recordedEvent
}

func (r *recordingSink) Token(e stream.TokenEvent) error {
	r.events = append(r.events, recordedEvent{kind: "token", token: e})
	return nil
}

func (r *recordingSink) Final(e stream.FinalEvent) error {
	r.events = append(r.events, recordedEvent{kind: "final", final: e})
	return nil
}

func (r *recordingSink) End() error {
	r.events = append(r.events, recordedEvent{kind: "end"})
	return nil
}

func (r *recordingSink) kinds() []string {
	kinds := make([]string, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.kind
	}
	return kinds
}

func (r *recordingSink) finalEvent(t *testing.T) stream.FinalEvent {
	t.Helper()
	for _, e := range r.events {
		if e.kind == "final" {
			return e.final
		}
	}
	t.Fatal("no final event recorded")
	return stream.FinalEvent{}
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

type fakeChunkRepo struct {
	chunks []*entity.Chunk
	err    error
}

func (f *fakeChunkRepo) CreateBulk(context.Context, []*entity.Chunk) error   { return nil }
func (f *fakeChunkRepo) DeleteByDocumentId(context.Context, uuid.UUID) error { return nil }
func (f *fakeChunkRepo) FindByWebsite(context.Context, uuid.UUID, int) ([]*entity.Chunk, error) {
	return f.chunks, f.err
}
func (f *fakeChunkRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Chunk, error) {
	return f.chunks, f.err
}
func (f *fakeChunkRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(f.chunks)), nil
}

type fakeChatRepo struct {
	chat      *entity.Chat
	createErr error
	calls     *[]string
}

func (f *fakeChatRepo) Create(_ context.Context, chat *entity.Chat) error {
	*f.calls = append(*f.calls, "chat.create")
	if f.createErr != nil {
		return f.createErr
	}
	f.chat = chat
	return nil
}

func (f *fakeChatRepo) UpdateVisitor(_ context.Context, _ uuid.UUID, visitorId string) error {
	*f.calls = append(*f.calls, "chat.backfill")
	if f.chat != nil {
		f.chat.VisitorId = visitorId
	}
	return nil
}

func (f *fakeChatRepo) FindOne(context.Context, ...specification.Specification) (*entity.Chat, error) {
	*f.calls = append(*f.calls, "chat.find")
	return f.chat, nil
}

func (f *fakeChatRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeMessageRepo struct {
	history   []*entity.Message
	created   []*entity.Message
	createErr error
	calls     *[]string
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *entity.Message) error {
	*f.calls = append(*f.calls, "message.create:"+msg.Role)
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessageRepo) FindRecentByChat(context.Context, uuid.UUID, int, []string) ([]*entity.Message, error) {
	*f.calls = append(*f.calls, "message.history")
	return f.history, nil
}

func (f *fakeMessageRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Message, error) {
	return f.history, nil
}

func (f *fakeMessageRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(f.history)), nil
}

type fakeUow struct {
	chats    *fakeChatRepo
	messages *fakeMessageRepo
}

func (f *fakeUow) Begin(context.Context) error { return nil }
func (f *fakeUow) Commit() error               { return nil }
func (f *fakeUow) Rollback() error             { return nil }

func (f *fakeUow) WebsiteRepository() contract.WebsiteRepository   { return nil }
func (f *fakeUow) DocumentRepository() contract.DocumentRepository { return nil }
func (f *fakeUow) ChunkRepository() contract.ChunkRepository       { return nil }
func (f *fakeUow) ChatRepository() contract.ChatRepository         { return f.chats }
func (f *fakeUow) MessageRepository() contract.MessageRepository   { return f.messages }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

type allowAll struct{}

func (allowAll) Allowed(context.Context, uuid.UUID, string) (bool, error) { return true, nil }

type denyOrigin struct{}

func (denyOrigin) Allowed(context.Context, uuid.UUID, string) (bool, error) { return false, nil }

type noLimit struct{}

func (noLimit) Allow(string) bool { return true }

type alwaysLimited struct{}

func (alwaysLimited) Allow(string) bool { return false }

type fakeLLM struct {
	fragments []string
	usage     *llm.Usage
	err       error
}

func (f *fakeLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return strings.Join(f.fragments, ""), f.err
}

func (f *fakeLLM) ChatStream(_ context.Context, _ []llm.Message, onDelta func(string) error, _ ...llm.Option) (*llm.Usage, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, frag := range f.fragments {
		if err := onDelta(frag); err != nil {
			return nil, err
		}
	}
	return f.usage, nil
}

// --- harness ---

type harness struct {
	service IChatService
	sink    *recordingSink
	chats   *fakeChatRepo
	msgs    *fakeMessageRepo
	calls   []string
}

func newHarness(provider llm.LLMProvider, chunkRepo *fakeChunkRepo, oc OriginChecker, rl RateLimiter) *harness {
	h := &harness{sink: &recordingSink{}}
	h.chats = &fakeChatRepo{calls: &h.calls}
	h.msgs = &fakeMessageRepo{calls: &h.calls}

	embedder := embedding.NewClient(&fakeEmbedder{vector: []float32{1, 0}}, nopLogger{})
	retriever := retrieval.NewRetriever(embedder, chunkRepo, nopLogger{})

	h.service = NewChatService(
		&fakeUowFactory{uow: &fakeUow{chats: h.chats, messages: h.msgs}},
		retriever,
		oc,
		rl,
		provider,
		nil,
		nopLogger{},
		time.Second,
	)
	return h
}

func validRequest() *dto.ChatStreamRequest {
	return &dto.ChatStreamRequest{
		WebsiteId: uuid.NewString(),
		SessionId: uuid.NewString(),
		VisitorId: uuid.NewString(),
		Message:   "What are your opening hours?",
	}
}

func tenantChunks() *fakeChunkRepo {
	return &fakeChunkRepo{
		chunks: []*entity.Chunk{{
			Id:         uuid.New(),
			DocumentId: uuid.New(),
			WebsiteId:  uuid.New(),
			ChunkIndex: 0,
			Content:    "opening hours are 9 to 5",
			Embedding:  []float32{1, 0},
		}},
	}
}

// --- tests ---

func TestStreamAnswerHappyPath(t *testing.T) {
	provider := &fakeLLM{
		fragments: []string{"We are ", "open 9 to 5."},
		usage:     &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	h := newHarness(provider, tenantChunks(), allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	kinds := h.sink.kinds()
	want := []string{"token", "token", "final", "end"}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", kinds, want)
		}
	}

	// Sequence numbers are gap-free starting at 1.
	if h.sink.events[0].token.Seq != 1 || h.sink.events[1].token.Seq != 2 {
		t.Errorf("token seqs = %d, %d", h.sink.events[0].token.Seq, h.sink.events[1].token.Seq)
	}

	final := h.sink.finalEvent(t)
	if final.Message != "We are open 9 to 5." {
		t.Errorf("final message = %q", final.Message)
	}
	if final.Usage == nil || final.Usage.TotalTokens != 15 {
		t.Errorf("final usage = %+v", final.Usage)
	}
	if len(final.UsedFiles) != 1 {
		t.Errorf("used files = %v", final.UsedFiles)
	}
	if final.TokensContext == 0 {
		t.Error("tokens_context should reflect the assembled context size")
	}
	if final.RequestID == "" {
		t.Error("request id missing")
	}
	if final.Error != nil {
		t.Errorf("unexpected error payload: %+v", final.Error)
	}

	// Both roles persisted, user first.
	if len(h.msgs.created) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(h.msgs.created))
	}
	if h.msgs.created[0].Role != entity.MessageRoleUser || h.msgs.created[1].Role != entity.MessageRoleAssistant {
		t.Errorf("persisted roles = %s, %s", h.msgs.created[0].Role, h.msgs.created[1].Role)
	}
}

func TestStreamAnswerHistoryReadBeforeUserInsert(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	historyIdx, insertIdx := -1, -1
	for i, call := range h.calls {
		switch call {
		case "message.history":
			historyIdx = i
		case "message.create:user":
			if insertIdx == -1 {
				insertIdx = i
			}
		}
	}
	if historyIdx == -1 || insertIdx == -1 {
		t.Fatalf("calls = %v", h.calls)
	}
	if historyIdx > insertIdx {
		t.Errorf("history read after user insert: %v", h.calls)
	}
}

func TestStreamAnswerValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.ChatStreamRequest)
	}{
		{"bad website id", func(r *dto.ChatStreamRequest) { r.WebsiteId = "not-a-uuid" }},
		{"bad session id", func(r *dto.ChatStreamRequest) { r.SessionId = "nope" }},
		{"bad visitor id", func(r *dto.ChatStreamRequest) { r.VisitorId = "nope" }},
		{"empty message", func(r *dto.ChatStreamRequest) { r.Message = "" }},
		{"oversized message", func(r *dto.ChatStreamRequest) { r.Message = strings.Repeat("x", 4001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), allowAll{}, noLimit{})
			req := validRequest()
			tt.mutate(req)

			h.service.StreamAnswer(context.Background(), req, &dto.RequestMeta{}, h.sink)

			final := h.sink.finalEvent(t)
			if final.Error == nil || final.Error.Code != stream.CodeHTTPError {
				t.Fatalf("final = %+v, want HTTP_ERROR", final)
			}
			if final.Error.Retryable {
				t.Error("validation failures are not retryable")
			}
			if h.sink.events[len(h.sink.events)-1].kind != "end" {
				t.Error("stream must close with an end event")
			}
			for _, e := range h.sink.events {
				if e.kind == "token" {
					t.Error("no tokens may be emitted on validation failure")
				}
			}
		})
	}
}

func TestStreamAnswerCountsMessageLengthInRunes(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), allowAll{}, noLimit{})
	req := validRequest()
	// 1500 characters, 4500 bytes; well under the 4000-character cap.
	req.Message = strings.Repeat("日", 1500)

	h.service.StreamAnswer(context.Background(), req, &dto.RequestMeta{}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error != nil {
		t.Fatalf("multibyte message rejected: %+v", final.Error)
	}
}

func TestStreamAnswerInvalidOrigin(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), denyOrigin{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{Origin: "https://evil.com"}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error == nil || final.Error.Code != stream.CodeInvalidOrigin {
		t.Fatalf("final = %+v, want INVALID_ORIGIN", final)
	}
	if final.Error.Retryable {
		t.Error("origin rejection is not retryable")
	}
}

func TestStreamAnswerRateLimited(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), allowAll{}, alwaysLimited{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error == nil || final.Error.Code != stream.CodeRateLimited {
		t.Fatalf("final = %+v, want RATE_LIMITED", final)
	}
	if !final.Error.Retryable {
		t.Error("rate limiting is retryable")
	}
}

func TestStreamAnswerDegradesWhenRetrievalFails(t *testing.T) {
	chunkRepo := &fakeChunkRepo{err: apperror.NewDatabaseError("down", errors.New("conn refused"))}
	h := newHarness(&fakeLLM{fragments: []string{"still ", "answering"}}, chunkRepo, allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error != nil {
		t.Fatalf("stream must not fail on retrieval errors, got %+v", final.Error)
	}
	if final.Message != "still answering" {
		t.Errorf("final message = %q", final.Message)
	}
	if final.TokensContext != 0 || len(final.UsedFiles) != 0 {
		t.Errorf("degraded answer must carry empty context, got %d / %v", final.TokensContext, final.UsedFiles)
	}
}

func TestStreamAnswerEmptyTenant(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"hello"}}, &fakeChunkRepo{}, allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error != nil {
		t.Fatalf("unexpected error payload: %+v", final.Error)
	}
	if final.TokensContext != 0 || len(final.UsedFiles) != 0 {
		t.Errorf("zero-chunk tenant must yield empty context, got %d / %v", final.TokensContext, final.UsedFiles)
	}
}

func TestStreamAnswerWithoutProvider(t *testing.T) {
	h := newHarness(nil, tenantChunks(), allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	tokens := 0
	for _, e := range h.sink.events {
		if e.kind == "token" {
			tokens++
			if e.token.Seq != 1 {
				t.Errorf("fallback token seq = %d, want 1", e.token.Seq)
			}
		}
	}
	if tokens != 1 {
		t.Fatalf("fallback must emit exactly one token, got %d", tokens)
	}

	final := h.sink.finalEvent(t)
	if final.Usage != nil {
		t.Error("fallback answer has no usage record")
	}
	if final.Message == "" {
		t.Error("fallback answer must not be empty")
	}
}

func TestStreamAnswerModelFailure(t *testing.T) {
	h := newHarness(&fakeLLM{err: errors.New("upstream 500")}, tenantChunks(), allowAll{}, noLimit{})

	h.service.StreamAnswer(context.Background(), validRequest(), &dto.RequestMeta{}, h.sink)

	final := h.sink.finalEvent(t)
	if final.Error == nil || final.Error.Code != stream.CodeStreamError {
		t.Fatalf("final = %+v, want STREAM_ERROR", final)
	}
	if !final.Error.Retryable {
		t.Error("generation failures are retryable")
	}
	if h.sink.events[len(h.sink.events)-1].kind != "end" {
		t.Error("stream must still close with end")
	}
}

func TestStreamAnswerVisitorBackfill(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), allowAll{}, noLimit{})
	// Pre-existing anonymous chat for the session.
	h.chats.chat = &entity.Chat{
		Id:        uuid.New(),
		WebsiteId: uuid.New(),
		SessionId: uuid.NewString(),
	}

	req := validRequest()
	h.service.StreamAnswer(context.Background(), req, &dto.RequestMeta{}, h.sink)

	if h.chats.chat.VisitorId != req.VisitorId {
		t.Errorf("visitor id not backfilled: %q", h.chats.chat.VisitorId)
	}
}

func TestQueryCollectsFinal(t *testing.T) {
	provider := &fakeLLM{fragments: []string{"answer"}, usage: &llm.Usage{TotalTokens: 3}}
	h := newHarness(provider, tenantChunks(), allowAll{}, noLimit{})

	req := validRequest()
	res, err := h.service.Query(context.Background(), &dto.ChatQueryRequest{
		WebsiteId: req.WebsiteId,
		SessionId: req.SessionId,
		VisitorId: req.VisitorId,
		Message:   req.Message,
	}, &dto.RequestMeta{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if res.Message != "answer" {
		t.Errorf("message = %q", res.Message)
	}
	if res.Usage == nil || res.Usage.TotalTokens != 3 {
		t.Errorf("usage = %+v", res.Usage)
	}
}

func TestHistoryReturnsSessionTranscript(t *testing.T) {
	h := newHarness(nil, tenantChunks(), allowAll{}, noLimit{})
	websiteId := uuid.New()
	sessionId := uuid.NewString()
	h.chats.chat = &entity.Chat{Id: uuid.New(), WebsiteId: websiteId, SessionId: sessionId}
	h.msgs.history = []*entity.Message{
		{Id: uuid.New(), ChatId: h.chats.chat.Id, Role: entity.MessageRoleUser, Content: "hi"},
		{Id: uuid.New(), ChatId: h.chats.chat.Id, Role: entity.MessageRoleAssistant, Content: "hello"},
	}

	history, err := h.service.History(context.Background(), websiteId, sessionId)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d", len(history))
	}
	if history[0].Role != entity.MessageRoleUser || history[1].Content != "hello" {
		t.Errorf("history = %+v", history)
	}
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	h := newHarness(nil, tenantChunks(), allowAll{}, noLimit{})

	history, err := h.service.History(context.Background(), uuid.New(), uuid.NewString())
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("history = %v, want empty slice", history)
	}
}

func TestQueryMapsGuardFailure(t *testing.T) {
	h := newHarness(&fakeLLM{fragments: []string{"ok"}}, tenantChunks(), denyOrigin{}, noLimit{})

	req := validRequest()
	_, err := h.service.Query(context.Background(), &dto.ChatQueryRequest{
		WebsiteId: req.WebsiteId,
		SessionId: req.SessionId,
		Message:   req.Message,
	}, &dto.RequestMeta{Origin: "https://evil.com"})

	var fault *StreamFault
	if !errors.As(err, &fault) {
		t.Fatalf("err = %v, want StreamFault", err)
	}
	if fault.Payload.Code != stream.CodeInvalidOrigin {
		t.Errorf("code = %s", fault.Payload.Code)
	}
}

package integration

import (
	"context"
	"testing"
	"time"

	"site-assistant-be/internal/config"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a running Postgres with the pgvector extension. Skipped when
// DB_CONNECTION_STRING is not set.
func TestRepositoryRoundTrip(t *testing.T) {
	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	require.NoError(t, err, "Failed to connect to DB")

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	uow := factory.NewUnitOfWork(ctx)

	assert.NotNil(t, uow.WebsiteRepository())
	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.ChunkRepository())
	assert.NotNil(t, uow.ChatRepository())
	assert.NotNil(t, uow.MessageRepository())

	// 1. Seed a website
	website := &entity.Website{
		Id:        uuid.New(),
		Domain:    "integration-test.example.com",
		PublicKey: "pk_" + uuid.NewString(),
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.WebsiteRepository().Create(ctx, website))
	defer func() {
		assert.NoError(t, uow.WebsiteRepository().Delete(ctx, website.Id))
	}()

	found, err := uow.WebsiteRepository().FindOne(ctx, specification.ByID{ID: website.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, website.Domain, found.Domain)

	// 2. Document plus chunks with embeddings
	document := &entity.Document{
		Id:        uuid.New(),
		WebsiteId: website.Id,
		FileName:  "integration.txt",
		Status:    entity.DocumentStatusReady,
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.DocumentRepository().Create(ctx, document))
	defer func() {
		assert.NoError(t, uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id))
		assert.NoError(t, uow.DocumentRepository().Delete(ctx, document.Id))
	}()

	embedding := make([]float32, 1536)
	embedding[0] = 1
	chunks := []*entity.Chunk{
		{
			Id:         uuid.New(),
			DocumentId: document.Id,
			WebsiteId:  website.Id,
			ChunkIndex: 0,
			Content:    "integration chunk content",
			Embedding:  embedding,
		},
	}
	require.NoError(t, uow.ChunkRepository().CreateBulk(ctx, chunks))

	stored, err := uow.ChunkRepository().FindByWebsite(ctx, website.Id, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "integration chunk content", stored[0].Content)
	// The vector survives the write/read cycle through the text column.
	require.Len(t, stored[0].Embedding, 1536)
	assert.InDelta(t, 1.0, stored[0].Embedding[0], 1e-6)

	count, err := uow.ChunkRepository().Count(ctx, specification.OwnedByWebsite{WebsiteID: website.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestChatSessionIdempotency(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	require.NoError(t, err, "Failed to connect to DB")

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	uow := factory.NewUnitOfWork(ctx)

	website := &entity.Website{
		Id:        uuid.New(),
		Domain:    "chat-test.example.com",
		PublicKey: "pk_" + uuid.NewString(),
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.WebsiteRepository().Create(ctx, website))
	defer func() {
		assert.NoError(t, uow.WebsiteRepository().Delete(ctx, website.Id))
	}()

	sessionId := uuid.NewString()
	chat := &entity.Chat{
		Id:        uuid.New(),
		WebsiteId: website.Id,
		SessionId: sessionId,
		PageURL:   "https://chat-test.example.com/pricing",
		StartedAt: time.Now(),
	}
	require.NoError(t, uow.ChatRepository().Create(ctx, chat))

	// Same (website, session) resolves to the same chat row.
	found, err := uow.ChatRepository().FindOne(ctx,
		specification.OwnedByWebsite{WebsiteID: website.Id},
		specification.BySessionID{SessionID: sessionId},
	)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, chat.Id, found.Id)
	assert.Equal(t, chat.PageURL, found.PageURL)

	// Visitor backfill
	visitorId := uuid.NewString()
	require.NoError(t, uow.ChatRepository().UpdateVisitor(ctx, found.Id, visitorId))

	// Messages in chronological order, newest window
	for i, content := range []string{"first question", "first answer", "second question"} {
		role := entity.MessageRoleUser
		if i == 1 {
			role = entity.MessageRoleAssistant
		}
		msg := &entity.Message{
			Id:        uuid.New(),
			ChatId:    found.Id,
			Role:      role,
			Content:   content,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, uow.MessageRepository().Create(ctx, msg))
	}

	history, err := uow.MessageRepository().FindRecentByChat(ctx, found.Id, 2,
		[]string{entity.MessageRoleUser, entity.MessageRoleAssistant})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first answer", history[0].Content)
	assert.Equal(t, "second question", history[1].Content)
}

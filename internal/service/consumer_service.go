package service

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/pkg/embedding"
	"site-assistant-be/pkg/events"
	"site-assistant-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	chunkSizeWords    = 500
	chunkOverlapWords = 80
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	embedder   *embedding.Client
	publisher  EventPublisher // nil when NATS is unavailable
	log        logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embedder *embedding.Client,
	publisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		embedder:   embedder,
		publisher:  publisher,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("ingest", "invalid ingest message, dropping", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("ingest", "processing document", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
	})

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.log.Error("ingest", "document lookup failed", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if document == nil {
		// Deleted before ingestion ran.
		msg.Ack()
		return
	}

	content, err := os.ReadFile(document.StoragePath)
	if err != nil {
		cs.log.Error("ingest", "blob read failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"path":        document.StoragePath,
			"error":       err.Error(),
		})
		cs.markStatus(ctx, uow, document, entity.DocumentStatusFailed)
		msg.Ack()
		return
	}

	chunks := utils.SplitWords(string(content), chunkSizeWords, chunkOverlapWords)
	if len(chunks) == 0 {
		cs.log.Warn("ingest", "document produced no chunks", map[string]interface{}{
			"document_id": document.Id.String(),
		})
		cs.markStatus(ctx, uow, document, entity.DocumentStatusFailed)
		msg.Ack()
		return
	}

	newChunks := make([]*entity.Chunk, 0, len(chunks))
	for i, chunkText := range chunks {
		vec, err := cs.embedder.Generate(ctx, chunkText)
		if err != nil {
			cs.log.Error("ingest", "chunk embedding failed", map[string]interface{}{
				"document_id": document.Id.String(),
				"chunk_index": i,
				"error":       err.Error(),
			})
			msg.Nack() // Retriable: the embedding backend may recover
			return
		}
		newChunks = append(newChunks, &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			WebsiteId:  document.WebsiteId,
			ChunkIndex: i,
			Content:    chunkText,
			Embedding:  vec,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		cs.log.Error("ingest", "begin transaction failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-ingestion replaces the previous chunk set atomically.
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		cs.log.Error("ingest", "old chunk delete failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if err := uow.ChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		cs.log.Error("ingest", "chunk insert failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	document.Status = entity.DocumentStatusReady
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.log.Error("ingest", "status update failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		cs.log.Error("ingest", "commit failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.log.Info("ingest", "document ingested", map[string]interface{}{
		"document_id": document.Id.String(),
		"chunks":      len(newChunks),
	})
	cs.publishIngested(document, len(newChunks))
	msg.Ack()
}

func (cs *consumerService) markStatus(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, status string) {
	document.Status = status
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.log.Warn("ingest", "status mark failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"status":      status,
			"error":       err.Error(),
		})
	}
}

func (cs *consumerService) publishIngested(document *entity.Document, chunkCount int) {
	if cs.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	event := events.NewDocumentIngested(document.WebsiteId.String(), document.Id.String(), chunkCount)
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.log.Warn("ingest", "analytics publish failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
	}
}

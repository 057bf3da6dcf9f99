package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"site-assistant-be/internal/config"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"
	"site-assistant-be/pkg/database"
	"site-assistant-be/pkg/embedding"
	"site-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

// One-shot ingestion for operators: reads a local file, chunks and embeds
// it, and writes the document plus its chunks for the given website.
func main() {
	websiteIdArg := flag.String("website", "", "website id (UUID)")
	fileArg := flag.String("file", "", "path to the text file to ingest")
	flag.Parse()

	if *websiteIdArg == "" || *fileArg == "" {
		log.Fatal("Usage: ingest -website <uuid> -file <path>")
	}

	websiteId, err := uuid.Parse(*websiteIdArg)
	if err != nil {
		log.Fatalf("Error: invalid website id: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: failed to connect to database: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}
	embedder := embedding.NewClient(provider, sysLogger)

	content, err := os.ReadFile(*fileArg)
	if err != nil {
		log.Fatalf("Error: failed to read file: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(ctx)

	website, err := uow.WebsiteRepository().FindOne(ctx, specification.ByID{ID: websiteId})
	if err != nil {
		log.Fatalf("Error: website lookup failed: %v", err)
	}
	if website == nil {
		log.Fatalf("Error: website %s not found", websiteId)
	}

	chunks := utils.SplitWords(string(content), 500, 80)
	if len(chunks) == 0 {
		log.Fatal("Error: file produced no chunks")
	}
	log.Printf("Split into %d chunks, embedding...", len(chunks))

	checksum := sha256.Sum256(content)
	document := &entity.Document{
		Id:             uuid.New(),
		WebsiteId:      websiteId,
		FileName:       filepath.Base(*fileArg),
		StoragePath:    *fileArg,
		MimeType:       "text/plain",
		SizeBytes:      int64(len(content)),
		ChecksumSha256: hex.EncodeToString(checksum[:]),
		Status:         entity.DocumentStatusPending,
	}

	newChunks := make([]*entity.Chunk, 0, len(chunks))
	for i, chunkText := range chunks {
		vec, err := embedder.Generate(ctx, chunkText)
		if err != nil {
			log.Fatalf("Error: embedding chunk %d failed: %v", i, err)
		}
		newChunks = append(newChunks, &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			WebsiteId:  websiteId,
			ChunkIndex: i,
			Content:    chunkText,
			Embedding:  vec,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Fatalf("Error: begin transaction failed: %v", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		log.Fatalf("Error: document insert failed: %v", err)
	}
	if err := uow.ChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		log.Fatalf("Error: chunk insert failed: %v", err)
	}

	document.Status = entity.DocumentStatusReady
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Fatalf("Error: status update failed: %v", err)
	}

	if err := uow.Commit(); err != nil {
		log.Fatalf("Error: commit failed: %v", err)
	}

	log.Printf("Success: ingested %s (%d chunks) for website %s", document.FileName, len(newChunks), websiteId)
}

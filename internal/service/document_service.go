package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, websiteId uuid.UUID, fileName, mimeType string, content []byte) (*dto.DocumentResponse, error)
	// IngestText accepts raw text instead of an uploaded file, for
	// callers that scrape or paste content directly.
	IngestText(ctx context.Context, req *dto.IngestTextRequest) (*dto.DocumentResponse, error)
	List(ctx context.Context, websiteId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Delete(ctx context.Context, websiteId, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  message.Publisher
	topicName  string
	uploadDir  string
	maxBytes   int64
	log        logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisher message.Publisher,
	topicName string,
	uploadDir string,
	maxUploadMB int,
	log logger.ILogger,
) IDocumentService {
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &documentService{
		uowFactory: uowFactory,
		publisher:  publisher,
		topicName:  topicName,
		uploadDir:  uploadDir,
		maxBytes:   int64(maxUploadMB) * 1024 * 1024,
		log:        log,
	}
}

func (ds *documentService) Upload(ctx context.Context, websiteId uuid.UUID, fileName, mimeType string, content []byte) (*dto.DocumentResponse, error) {
	if websiteId == uuid.Nil {
		return nil, apperror.NewIngestionError("website_id is required", nil)
	}
	if int64(len(content)) > ds.maxBytes {
		return nil, apperror.NewIngestionError(
			fmt.Sprintf("file exceeds the %d byte upload limit", ds.maxBytes), nil)
	}
	if len(content) == 0 {
		return nil, apperror.NewIngestionError("file is empty", nil)
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)

	website, err := uow.WebsiteRepository().FindOne(ctx, specification.ByID{ID: websiteId})
	if err != nil {
		return nil, err
	}
	if website == nil {
		return nil, apperror.NewIngestionError("website not found", nil).
			WithDetail("website_id", websiteId.String())
	}

	checksum := sha256.Sum256(content)
	documentId := uuid.New()

	storagePath, err := ds.writeFile(websiteId, documentId, fileName, content)
	if err != nil {
		return nil, err
	}

	document := &entity.Document{
		Id:             documentId,
		WebsiteId:      websiteId,
		FileName:       sanitizeFileName(fileName),
		StoragePath:    storagePath,
		MimeType:       mimeType,
		SizeBytes:      int64(len(content)),
		ChecksumSha256: hex.EncodeToString(checksum[:]),
		Status:         entity.DocumentStatusPending,
	}
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		// The row is the source of truth; remove the orphaned blob.
		if rmErr := os.Remove(storagePath); rmErr != nil {
			ds.log.Warn("document", "orphan blob cleanup failed", map[string]interface{}{
				"path":  storagePath,
				"error": rmErr.Error(),
			})
		}
		return nil, err
	}

	ds.enqueueIngestion(document.Id)

	return ds.toResponse(document, 0), nil
}

func (ds *documentService) IngestText(ctx context.Context, req *dto.IngestTextRequest) (*dto.DocumentResponse, error) {
	websiteId, err := uuid.Parse(req.WebsiteId)
	if err != nil {
		return nil, apperror.NewIngestionError("website_id must be a valid UUID", err)
	}

	fileName := sanitizeFileName(req.FileName)
	if !strings.Contains(fileName, ".") {
		fileName += ".txt"
	}

	return ds.Upload(ctx, websiteId, fileName, "text/plain; charset=utf-8", []byte(req.Content))
}

func (ds *documentService) enqueueIngestion(documentId uuid.UUID) {
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{DocumentId: documentId})
	if err != nil {
		ds.log.Error("document", "ingest payload marshal failed", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ds.publisher.Publish(ds.topicName, msg); err != nil {
		// The document stays pending; a re-upload or manual requeue
		// picks it up.
		ds.log.Error("document", "ingest publish failed", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}
}

func (ds *documentService) writeFile(websiteId, documentId uuid.UUID, fileName string, content []byte) (string, error) {
	dir := filepath.Join(ds.uploadDir, websiteId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperror.NewStorageError("create upload directory", err)
	}

	// The stored name is id-prefixed so duplicate uploads never collide.
	name := documentId.String() + "_" + sanitizeFileName(fileName)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", apperror.NewStorageError("write upload", err)
	}
	return path, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	return name
}

func (ds *documentService) List(ctx context.Context, websiteId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = 20
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	docs := uow.DocumentRepository()

	total, err := docs.Count(ctx, specification.OwnedByWebsite{WebsiteID: websiteId})
	if err != nil {
		return nil, err
	}

	documents, err := docs.FindAll(ctx,
		specification.OwnedByWebsite{WebsiteID: websiteId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, err
	}

	chunks := uow.ChunkRepository()
	responses := make([]dto.DocumentResponse, 0, len(documents))
	for _, doc := range documents {
		chunkCount, err := chunks.Count(ctx, specification.ByDocumentID{DocumentID: doc.Id})
		if err != nil {
			return nil, err
		}
		responses = append(responses, *ds.toResponse(doc, chunkCount))
	}

	return &dto.ListDocumentsResponse{
		Documents: responses,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}, nil
}

func (ds *documentService) Delete(ctx context.Context, websiteId, documentId uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedByWebsite{WebsiteID: websiteId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return apperror.NewIngestionError("document not found", nil).
			WithDetail("document_id", documentId.String())
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.NewDatabaseError("begin delete transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return apperror.NewDatabaseError("commit delete transaction", err)
	}

	if document.StoragePath != "" {
		if err := os.Remove(document.StoragePath); err != nil && !os.IsNotExist(err) {
			ds.log.Warn("document", "blob removal failed", map[string]interface{}{
				"path":  document.StoragePath,
				"error": err.Error(),
			})
		}
	}

	return nil
}

func (ds *documentService) toResponse(document *entity.Document, chunkCount int64) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:         document.Id,
		WebsiteId:  document.WebsiteId,
		FileName:   document.FileName,
		MimeType:   document.MimeType,
		SizeBytes:  document.SizeBytes,
		Status:     document.Status,
		ChunkCount: chunkCount,
		CreatedAt:  document.CreatedAt,
	}
}

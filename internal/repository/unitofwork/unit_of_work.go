package unitofwork

import (
	"context"

	"site-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	WebsiteRepository() contract.WebsiteRepository
	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
}

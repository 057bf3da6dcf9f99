package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedByWebsite scopes a query to one tenant. Every read of tenant data
// goes through this; there is no cross-tenant query path.
type OwnedByWebsite struct {
	WebsiteID uuid.UUID
}

func (s OwnedByWebsite) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("website_id = ?", s.WebsiteID)
}

// ByDocumentID filters chunks by their owning document
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// BySessionID filters chats by the widget-supplied session id
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByChatID filters messages by chat
type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ByRoles filters messages to the given roles
type ByRoles struct {
	Roles []string
}

func (s ByRoles) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role IN ?", s.Roles)
}

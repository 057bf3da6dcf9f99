package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/repository/specification"
	"site-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IWebsiteService interface {
	Create(ctx context.Context, req *dto.CreateWebsiteRequest) (*dto.WebsiteResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.WebsiteResponse, error)
}

type websiteService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewWebsiteService(uowFactory unitofwork.RepositoryFactory) IWebsiteService {
	return &websiteService{
		uowFactory: uowFactory,
	}
}

func (ws *websiteService) Create(ctx context.Context, req *dto.CreateWebsiteRequest) (*dto.WebsiteResponse, error) {
	publicKey, err := newPublicKey()
	if err != nil {
		return nil, apperror.NewConfigurationError("could not generate public key")
	}

	website := &entity.Website{
		Id:        uuid.New(),
		Domain:    strings.ToLower(strings.TrimSpace(req.Domain)),
		PublicKey: publicKey,
	}

	uow := ws.uowFactory.NewUnitOfWork(ctx)
	if err := uow.WebsiteRepository().Create(ctx, website); err != nil {
		return nil, err
	}

	return toWebsiteResponse(website), nil
}

func (ws *websiteService) Show(ctx context.Context, id uuid.UUID) (*dto.WebsiteResponse, error) {
	uow := ws.uowFactory.NewUnitOfWork(ctx)

	website, err := uow.WebsiteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if website == nil {
		return nil, apperror.NewDatabaseError("website not found", nil).
			WithDetail("website_id", id.String())
	}

	return toWebsiteResponse(website), nil
}

func newPublicKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "pk_" + hex.EncodeToString(buf), nil
}

func toWebsiteResponse(website *entity.Website) *dto.WebsiteResponse {
	return &dto.WebsiteResponse{
		Id:        website.Id,
		Domain:    website.Domain,
		PublicKey: website.PublicKey,
		CreatedAt: website.CreatedAt,
	}
}

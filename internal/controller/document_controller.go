package controller

import (
	"io"

	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/pkg/serverutils"
	"site-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	IngestText(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Upload)
	h.Post("text", c.IngestText)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func websiteIdFromHeader(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw := ctx.Get("X-Website-Id")
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "X-Website-Id header is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "X-Website-Id must be a valid UUID")
	}
	return id, nil
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	websiteId, err := websiteIdFromHeader(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.documentService.Upload(
		ctx.Context(),
		websiteId,
		fileHeader.Filename,
		fileHeader.Header.Get(fiber.HeaderContentType),
		content,
	)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted for ingestion", res))
}

func (c *documentController) IngestText(ctx *fiber.Ctx) error {
	var req dto.IngestTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.IngestText(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted for ingestion", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	websiteId, err := websiteIdFromHeader(ctx)
	if err != nil {
		return err
	}

	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), websiteId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	websiteId, err := websiteIdFromHeader(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "document id must be a valid UUID")
	}

	if err := c.documentService.Delete(ctx.Context(), websiteId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

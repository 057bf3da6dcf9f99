package controller

import (
	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/pkg/serverutils"
	"site-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWebsiteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type websiteController struct {
	websiteService service.IWebsiteService
}

func NewWebsiteController(websiteService service.IWebsiteService) IWebsiteController {
	return &websiteController{
		websiteService: websiteService,
	}
}

func (c *websiteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/website/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
}

func (c *websiteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateWebsiteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.websiteService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create website", res))
}

func (c *websiteController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "website id must be a valid UUID")
	}

	res, err := c.websiteService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show website", res))
}

package controller

import (
	"bufio"
	"context"
	"errors"

	"site-assistant-be/internal/dto"
	"site-assistant-be/internal/pkg/serverutils"
	"site-assistant-be/internal/service"
	"site-assistant-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("stream", c.Stream)
	h.Post("query", c.Query)
	h.Get("history", c.History)

	h.Use("ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			// Locals outlive this handler; header values alias the
			// fasthttp buffer and must be copied.
			ctx.Locals("origin", utils.CopyString(ctx.Get(fiber.HeaderOrigin)))
			ctx.Locals("client_ip", utils.CopyString(ctx.IP()))
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("ws", websocket.New(c.streamWS))
}

// Stream answers over server-sent events. Every response is 200: the
// protocol carries failures inside final events, never as HTTP statuses.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	var req dto.ChatStreamRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	// The stream writer runs after this handler returns, so everything
	// read from the request must be copied out of the fasthttp buffers.
	meta := &dto.RequestMeta{
		Origin:    utils.CopyString(ctx.Get(fiber.HeaderOrigin)),
		ClientIP:  utils.CopyString(ctx.IP()),
		RequestId: requestId(utils.CopyString(ctx.Get("X-Request-Id"))),
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The writer runs after this handler returns, so the fiber context
	// must not be touched inside it.
	chatService := c.chatService
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		sink := stream.NewSSEWriter(w)
		chatService.StreamAnswer(context.Background(), &req, meta, sink)
	}))

	return nil
}

func (c *chatController) streamWS(conn *websocket.Conn) {
	defer conn.Close()

	var req dto.ChatStreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		return
	}

	origin, _ := conn.Locals("origin").(string)
	clientIP, _ := conn.Locals("client_ip").(string)
	meta := &dto.RequestMeta{
		Origin:    origin,
		ClientIP:  clientIP,
		RequestId: requestId(""),
	}

	sink := stream.NewWSWriter(conn)
	c.chatService.StreamAnswer(context.Background(), &req, meta, sink)
}

// Query is the non-streaming variant for server-side callers.
func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	meta := &dto.RequestMeta{
		Origin:    ctx.Get(fiber.HeaderOrigin),
		ClientIP:  ctx.IP(),
		RequestId: requestId(ctx.Get("X-Request-Id")),
	}

	res, err := c.chatService.Query(ctx.Context(), &req, meta)
	if err != nil {
		var fault *service.StreamFault
		if errors.As(err, &fault) {
			status := statusForStreamCode(fault.Payload.Code)
			return ctx.Status(status).JSON(serverutils.ErrorResponse(status, fault.Payload.Message))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat query", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	websiteId, err := uuid.Parse(ctx.Query("website_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "website_id must be a valid UUID")
	}
	sessionId := ctx.Query("session_id")
	if _, err := uuid.Parse(sessionId); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "session_id must be a valid UUID")
	}

	history, err := c.chatService.History(ctx.Context(), websiteId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat history", history))
}

func statusForStreamCode(code string) int {
	switch code {
	case stream.CodeInvalidOrigin:
		return fiber.StatusForbidden
	case stream.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case stream.CodeHTTPError:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func requestId(header string) string {
	if header != "" {
		if _, err := uuid.Parse(header); err == nil {
			return header
		}
	}
	return uuid.NewString()
}

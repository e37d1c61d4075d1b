package controller

import (
	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/pkg/serverutils"
	"ai-notes-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Post("session", c.CreateSession)
	h.Get("session/:id", c.GetChatHistory)
	h.Delete("session/:id", c.DeleteSession)
	h.Post("ask", c.Ask)
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.chatbotService.GetChatHistory(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatbotController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Ask(ctx.UserContext(), &req)
	if err != nil {
		if res != nil {
			// Completion failed after retrieval; the sources are still useful.
			code := serverutils.StatusFor(err)
			return ctx.Status(code).JSON(serverutils.ErrorResponseWithData(code, err.Error(), res))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.chatbotService.DeleteSession(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

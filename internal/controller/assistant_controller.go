package controller

import (
	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/pkg/serverutils"
	"ai-notes-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Correct(ctx *fiber.Ctx) error
	Translate(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{assistantService: assistantService}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("correct", c.Correct)
	h.Post("translate", c.Translate)
}

func (c *assistantController) Correct(ctx *fiber.Ctx) error {
	var req dto.CorrectTextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	text, err := c.assistantService.Correct(ctx.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success correct text", dto.TextResponse{Text: text}))
}

func (c *assistantController) Translate(ctx *fiber.Ctx) error {
	var req dto.TranslateTextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	text, err := c.assistantService.Translate(ctx.UserContext(), req.Text, req.Language)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success translate text", dto.TextResponse{Text: text}))
}

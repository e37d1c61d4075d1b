package controller

import (
	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/serverutils"
	"ai-notes-assistant/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	ListStale(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	CreateFromAudio(ctx *fiber.Ctx) error
	Speech(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService     service.INoteService
	indexingService service.IIndexingService
	speechService   service.ISpeechService
}

// NewNoteController builds the note routes. speechService may be nil when no
// speech engine is configured.
func NewNoteController(noteService service.INoteService, indexingService service.IIndexingService, speechService service.ISpeechService) INoteController {
	return &noteController{
		noteService:     noteService,
		indexingService: indexingService,
		speechService:   speechService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/note/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get("stale", c.ListStale)
	h.Post("audio", c.CreateFromAudio)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Post(":id/index", c.Index)
	h.Get(":id/speech", c.Speech)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	note, err := c.noteService.Create(ctx.UserContext(), req.Text, entity.SourceKind(req.SourceKind), req.Metadata)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", dto.NewNoteResponse(note)))
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("NoteController.List", "malformed query: %v", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Limit == 0 {
		req.Limit = service.DefaultListLimit
	}

	notes, total, err := c.noteService.List(ctx.UserContext(), req.Limit, req.Offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", dto.ListNotesResponse{
		Notes:  dto.NewNoteResponses(notes),
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}))
}

func (c *noteController) ListStale(ctx *fiber.Ctx) error {
	notes, err := c.noteService.ListStale(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list stale notes", dto.NewNoteResponses(notes)))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	note, err := c.noteService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", dto.NewNoteResponse(note)))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	note, err := c.noteService.Update(ctx.UserContext(), req.Id, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", dto.NewNoteResponse(note)))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}

// Index embeds the note right away instead of waiting for the queue.
func (c *noteController) Index(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.indexingService.IndexNote(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	body := dto.IndexNoteResponse{
		NoteId:           res.NoteId,
		Status:           string(res.Status),
		EmbeddingVersion: res.EmbeddingVersion,
	}
	if res.Warning != nil {
		body.Warning = res.Warning.Error()
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Note left pending for reindex", body))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success index note", body))
}

func (c *noteController) CreateFromAudio(ctx *fiber.Ctx) error {
	if c.speechService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "speech engine not configured")
	}

	fh, err := ctx.FormFile("audio")
	if err != nil {
		return apperror.Validation("NoteController.CreateFromAudio", "form file \"audio\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	note, err := c.speechService.CreateNoteFromAudio(ctx.UserContext(), f, fh.Filename)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note from audio", dto.NewNoteResponse(note)))
}

func (c *noteController) Speech(ctx *fiber.Ctx) error {
	if c.speechService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "speech engine not configured")
	}
	id, err := parseID(ctx, "id")
	if err != nil {
		return err
	}

	audio, err := c.speechService.Synthesize(ctx.UserContext(), id, ctx.Query("voice"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(audio)
}

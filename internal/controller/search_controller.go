package controller

import (
	"context"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/serverutils"
	"ai-notes-assistant/pkg/rag/search"

	"github.com/gofiber/fiber/v2"
)

type Searcher interface {
	Search(ctx context.Context, query string, topK int, minScore float64) (*search.Result, error)
}

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	engine          Searcher
	defaultTopK     int
	defaultMinScore float64
}

func NewSearchController(engine Searcher, defaultTopK int, defaultMinScore float64) ISearchController {
	return &searchController{
		engine:          engine,
		defaultTopK:     defaultTopK,
		defaultMinScore: defaultMinScore,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Get("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("SearchController.Search", "malformed query: %v", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	topK := req.TopK
	if topK == 0 {
		topK = c.defaultTopK
	}
	minScore := c.defaultMinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	res, err := c.engine.Search(ctx.UserContext(), req.Query, topK, minScore)
	if err != nil {
		return err
	}

	body := dto.SearchResponse{
		Query:        res.Query,
		Hits:         make([]*dto.SearchHitResponse, 0, len(res.Hits)),
		NeedsReindex: res.NeedsReindex,
	}
	for _, h := range res.Hits {
		body.Hits = append(body.Hits, &dto.SearchHitResponse{Note: dto.NewNoteResponse(h.Note), Score: h.Score})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search notes", body))
}

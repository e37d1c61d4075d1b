package dto

import (
	"github.com/google/uuid"
)

type SearchRequest struct {
	Query    string   `query:"q" validate:"required"`
	TopK     int      `query:"top_k" validate:"omitempty,min=1"`
	MinScore *float64 `query:"min_score" validate:"omitempty,min=0,max=1"`
}

type SearchHitResponse struct {
	Note  *NoteResponse `json:"note"`
	Score float64       `json:"score"`
}

type SearchResponse struct {
	Query        string               `json:"query"`
	Hits         []*SearchHitResponse `json:"hits"`
	NeedsReindex []uuid.UUID          `json:"needs_reindex"`
}

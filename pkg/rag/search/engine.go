// Package search answers "which notes are semantically closest to this query".
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/contract"
	"ai-notes-assistant/pkg/embedding"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const op = "search.Search"

// NoteReader resolves vector hits to the current notes.
type NoteReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Note, error)
}

type Hit struct {
	Note  *entity.Note
	Score float64 // cosine similarity clamped to [0, 1]
}

type Result struct {
	Query string
	Hits  []Hit
	// NeedsReindex lists matching notes whose stored vector no longer reflects their text.
	NeedsReindex []uuid.UUID
}

type Engine struct {
	embedder embedding.EmbeddingProvider
	vectors  contract.NoteVectorRepository
	notes    NoteReader
	log      logger.ILogger
	tracer   trace.Tracer
	maxTopK  int
}

func NewEngine(embedder embedding.EmbeddingProvider, vectors contract.NoteVectorRepository, notes NoteReader, log logger.ILogger, maxTopK int) *Engine {
	if maxTopK <= 0 {
		maxTopK = 100
	}
	return &Engine{
		embedder: embedder,
		vectors:  vectors,
		notes:    notes,
		log:      log,
		tracer:   otel.Tracer("ai-notes-assistant/rag/search"),
		maxTopK:  maxTopK,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Search embeds query, asks the vector store for topK neighbours and returns the
// live, up-to-date notes scoring at least minScore, best first. Ties go to the
// most recently updated note.
func (e *Engine) Search(ctx context.Context, query string, topK int, minScore float64) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.Int("search.top_k", topK),
		attribute.Float64("search.min_score", minScore),
	))
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, apperror.Validation(op, "query must not be empty")
	}
	if topK < 1 || topK > e.maxTopK {
		return nil, apperror.Validation(op, "top_k must be between 1 and %d, got %d", e.maxTopK, topK)
	}
	if minScore < 0 || minScore > 1 {
		return nil, apperror.Validation(op, "min_score must be between 0 and 1, got %v", minScore)
	}

	res, err := e.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		span.SetStatus(codes.Error, "embedding failed")
		return nil, apperror.Retrieval(op, apperror.Embedding(op, err))
	}

	scored, err := e.vectors.Query(ctx, res.Embedding.Values, topK)
	if err != nil {
		span.SetStatus(codes.Error, "vector query failed")
		return nil, apperror.Retrieval(op, apperror.Store(op, err))
	}

	candidates := make([]*entity.ScoredNoteVector, 0, len(scored))
	ids := make([]uuid.UUID, 0, len(scored))
	for _, s := range scored {
		if clamp01(s.Score) < minScore {
			continue
		}
		candidates = append(candidates, s)
		ids = append(ids, s.NoteId)
	}

	result := &Result{Query: query, Hits: []Hit{}, NeedsReindex: []uuid.UUID{}}
	if len(candidates) == 0 {
		span.SetAttributes(attribute.Int("search.hits", 0))
		return result, nil
	}

	notes, err := e.notes.FindByIDs(ctx, ids)
	if err != nil {
		span.SetStatus(codes.Error, "note lookup failed")
		return nil, apperror.Retrieval(op, err)
	}
	byId := make(map[uuid.UUID]*entity.Note, len(notes))
	for _, n := range notes {
		byId[n.Id] = n
	}

	version := e.embedder.Version()
	for _, c := range candidates {
		note, ok := byId[c.NoteId]
		if !ok || note.IsDeleted() {
			// Orphan vector or an interrupted delete; the sweeper removes it.
			continue
		}
		if isOutdated(note, c, version) {
			result.NeedsReindex = append(result.NeedsReindex, note.Id)
			continue
		}
		result.Hits = append(result.Hits, Hit{Note: note, Score: clamp01(c.Score)})
	}

	sort.SliceStable(result.Hits, func(i, j int) bool {
		if result.Hits[i].Score == result.Hits[j].Score {
			return result.Hits[i].Note.UpdatedAt.After(result.Hits[j].Note.UpdatedAt)
		}
		return result.Hits[i].Score > result.Hits[j].Score
	})

	span.SetAttributes(
		attribute.Int("search.hits", len(result.Hits)),
		attribute.Int("search.needs_reindex", len(result.NeedsReindex)),
	)
	e.log.Debug("Search", "Search completed", map[string]interface{}{
		"candidates":    len(scored),
		"hits":          len(result.Hits),
		"needs_reindex": len(result.NeedsReindex),
	})
	return result, nil
}

// isOutdated reports whether the stored vector may not reflect the note's current text.
func isOutdated(note *entity.Note, v *entity.ScoredNoteVector, version string) bool {
	if note.Status != entity.NoteStatusIndexed {
		return true
	}
	// Stores keep timestamps at micro- or nanosecond precision; compare at millisecond.
	if v.Payload.UpdatedAt.Before(note.UpdatedAt.Truncate(time.Millisecond)) {
		return true
	}
	if v.Payload.EmbeddingVersion != "" && v.Payload.EmbeddingVersion != version {
		return true
	}
	return false
}

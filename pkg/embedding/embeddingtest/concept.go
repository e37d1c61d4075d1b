// Package embeddingtest provides a deterministic embedder for tests.
package embeddingtest

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"ai-notes-assistant/pkg/embedding"
)

// Concept dimensions of the vectors produced by ConceptEmbedder.
const (
	DimFood = iota
	DimTime
	DimWork
	DimOther
	Dimension
)

var concepts = map[string]int{
	"milk": DimFood, "egg": DimFood, "eggs": DimFood, "bread": DimFood, "buy": DimFood,
	"grocery": DimFood, "groceries": DimFood, "shopping": DimFood, "food": DimFood, "dinner": DimFood,
	"tomorrow": DimTime, "today": DimTime, "tonight": DimTime, "reminder": DimTime, "remind": DimTime,
	"deadline": DimTime, "monday": DimTime,
	"meeting": DimWork, "project": DimWork, "report": DimWork, "client": DimWork, "deploy": DimWork,
}

// ConceptEmbedder maps known keywords onto concept axes so that related texts
// ("Buy milk and eggs tomorrow", "grocery reminder") land close together.
type ConceptEmbedder struct {
	mu      sync.Mutex
	version string
	err     error
	calls   int
}

func NewConceptEmbedder() *ConceptEmbedder {
	return &ConceptEmbedder{version: "concept:v1"}
}

// Fail makes every following call return err; nil restores normal behaviour.
func (c *ConceptEmbedder) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *ConceptEmbedder) SetVersion(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

func (c *ConceptEmbedder) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *ConceptEmbedder) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *ConceptEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: Vector(text)},
	}, nil
}

// Vector returns the concept vector of text.
func Vector(text string) []float32 {
	v := make([]float32, Dimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if dim, ok := concepts[w]; ok {
			v[dim]++
		} else {
			v[DimOther] += 0.1
		}
	}
	return v
}

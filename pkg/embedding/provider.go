package embedding

import (
	"context"
	"errors"
)

// Task types understood by providers that distinguish documents from queries.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

var (
	ErrEmptyInput        = errors.New("embedding input is empty")
	ErrInputTooLong      = errors.New("embedding input exceeds the maximum length")
	ErrDimensionMismatch = errors.New("embedding has unexpected dimension")
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
	// Version identifies the provider and model. Vectors from different versions are not comparable.
	Version() string
}

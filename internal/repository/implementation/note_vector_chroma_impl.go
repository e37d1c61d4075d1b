package implementation

import (
	"context"
	"fmt"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/repository/contract"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
)

// ChromaNoteVectorRepository keeps one document per note in a cosine-space collection.
type ChromaNoteVectorRepository struct {
	client     chromago.Client
	collection chromago.Collection
}

func NewChromaNoteVectorRepository(ctx context.Context, baseURL, collectionName string) (*ChromaNoteVectorRepository, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithHNSWSpaceCreate(embeddings.COSINE),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "note vectors"),
			),
		),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to get or create chroma collection %s: %w", collectionName, err)
	}

	return &ChromaNoteVectorRepository{client: client, collection: collection}, nil
}

var _ contract.NoteVectorRepository = (*ChromaNoteVectorRepository)(nil)

func (r *ChromaNoteVectorRepository) Upsert(ctx context.Context, record *entity.NoteVector) error {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(payloadUpdatedAt, record.Payload.UpdatedAt.UTC().Format(time.RFC3339Nano)),
		chromago.NewStringAttribute(payloadEmbeddingVersion, record.Payload.EmbeddingVersion),
	)
	return r.collection.Upsert(ctx,
		chromago.WithIDs(chromago.DocumentID(record.NoteId.String())),
		chromago.WithTexts(record.Payload.Text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(record.Vector)),
		chromago.WithMetadatas(metadata),
	)
}

func (r *ChromaNoteVectorRepository) Delete(ctx context.Context, noteId uuid.UUID) error {
	return r.collection.Delete(ctx, chromago.WithIDsDelete(chromago.DocumentID(noteId.String())))
}

// chroma-go v0.2.3 has no constant for it; the server accepts the raw value.
const includeDistances = chromago.Include("distances")

func (r *ChromaNoteVectorRepository) Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error) {
	if topK <= 0 {
		return []*entity.ScoredNoteVector{}, nil
	}
	results, err := r.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
		chromago.WithIncludeQuery(chromago.IncludeDocuments, chromago.IncludeMetadatas, includeDistances),
	)
	if err != nil {
		return nil, err
	}

	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return []*entity.ScoredNoteVector{}, nil
	}
	documents := results.GetDocumentsGroups()
	metadatas := results.GetMetadatasGroups()
	distances := results.GetDistancesGroups()

	scored := make([]*entity.ScoredNoteVector, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		noteId, err := uuid.Parse(string(id))
		if err != nil {
			continue
		}
		var payload entity.VectorPayload
		if len(documents) > 0 && i < len(documents[0]) && documents[0][i] != nil {
			payload.Text = documents[0][i].ContentString()
		}
		if len(metadatas) > 0 && i < len(metadatas[0]) && metadatas[0][i] != nil {
			if v, ok := metadatas[0][i].GetString(payloadUpdatedAt); ok {
				payload.UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
			}
			if v, ok := metadatas[0][i].GetString(payloadEmbeddingVersion); ok {
				payload.EmbeddingVersion = v
			}
		}
		// Cosine space reports distance = 1 - similarity.
		var score float64
		if len(distances) > 0 && i < len(distances[0]) {
			score = 1 - float64(distances[0][i])
		}
		scored = append(scored, &entity.ScoredNoteVector{NoteId: noteId, Score: score, Payload: payload})
	}
	return scored, nil
}

func (r *ChromaNoteVectorRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

func (r *ChromaNoteVectorRepository) Close() error {
	return r.client.Close()
}

package implementation

import (
	"context"
	"fmt"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadText             = "text"
	payloadUpdatedAt        = "updated_at"
	payloadEmbeddingVersion = "embedding_version"
)

// QdrantNoteVectorRepository stores one point per note, the point id being the note id.
type QdrantNoteVectorRepository struct {
	client     *qdrant.Client
	collection string
}

type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimension  int
}

// NewQdrantNoteVectorRepository connects and creates the cosine collection if missing.
func NewQdrantNoteVectorRepository(ctx context.Context, cfg QdrantConfig) (*QdrantNoteVectorRepository, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(cfg.Dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create qdrant collection %s: %w", cfg.Collection, err)
		}
	}

	return &QdrantNoteVectorRepository{client: client, collection: cfg.Collection}, nil
}

var _ contract.NoteVectorRepository = (*QdrantNoteVectorRepository)(nil)

func (r *QdrantNoteVectorRepository) Upsert(ctx context.Context, record *entity.NoteVector) error {
	wait := true
	_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(record.NoteId.String()),
				Vectors: qdrant.NewVectors(record.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadText:             record.Payload.Text,
					payloadUpdatedAt:        record.Payload.UpdatedAt.UTC().Format(time.RFC3339Nano),
					payloadEmbeddingVersion: record.Payload.EmbeddingVersion,
				}),
			},
		},
	})
	return err
}

func (r *QdrantNoteVectorRepository) Delete(ctx context.Context, noteId uuid.UUID) error {
	wait := true
	_, err := r.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(noteId.String())),
	})
	return err
}

func (r *QdrantNoteVectorRepository) Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error) {
	if topK <= 0 {
		return []*entity.ScoredNoteVector{}, nil
	}
	limit := uint64(topK)
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredNoteVector, 0, len(points))
	for _, p := range points {
		noteId, err := uuid.Parse(p.GetId().GetUuid())
		if err != nil {
			// Points not written by this repository are ignored.
			continue
		}
		payload := p.GetPayload()
		updatedAt, _ := time.Parse(time.RFC3339Nano, payload[payloadUpdatedAt].GetStringValue())
		scored = append(scored, &entity.ScoredNoteVector{
			NoteId: noteId,
			Score:  float64(p.GetScore()),
			Payload: entity.VectorPayload{
				Text:             payload[payloadText].GetStringValue(),
				UpdatedAt:        updatedAt,
				EmbeddingVersion: payload[payloadEmbeddingVersion].GetStringValue(),
			},
		})
	}
	return scored, nil
}

func (r *QdrantNoteVectorRepository) Count(ctx context.Context) (int64, error) {
	exact := true
	count, err := r.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: r.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

func (r *QdrantNoteVectorRepository) Close() error {
	return r.client.Close()
}

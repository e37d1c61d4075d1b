package memory

import (
	"context"
	"sort"
	"sync"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/pkg/embedding"

	"github.com/google/uuid"
)

// NoteVectorRepository is a brute-force cosine store, one record per note.
type NoteVectorRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]entity.NoteVector
}

func NewNoteVectorRepository() *NoteVectorRepository {
	return &NoteVectorRepository{
		records: make(map[uuid.UUID]entity.NoteVector),
	}
}

func (s *NoteVectorRepository) Upsert(ctx context.Context, record *entity.NoteVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.Vector = append([]float32(nil), record.Vector...)
	s.records[record.NoteId] = stored
	return nil
}

func (s *NoteVectorRepository) Delete(ctx context.Context, noteId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, noteId)
	return nil
}

func (s *NoteVectorRepository) Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*entity.ScoredNoteVector, 0, len(s.records))
	for id, rec := range s.records {
		results = append(results, &entity.ScoredNoteVector{
			NoteId:  id,
			Score:   embedding.CosineSimilarity(vector, rec.Vector),
			Payload: rec.Payload,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].NoteId.String() < results[j].NoteId.String()
		}
		return results[i].Score > results[j].Score
	})

	if topK < 0 {
		topK = 0
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *NoteVectorRepository) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// Get returns the stored record, for inspection in tests and tooling.
func (s *NoteVectorRepository) Get(noteId uuid.UUID) (entity.NoteVector, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[noteId]
	return rec, ok
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/repository/contract"

	"github.com/google/uuid"
)

// NoteRepository keeps notes in a map. It backs tests and the in-memory store mode.
type NoteRepository struct {
	mu    sync.RWMutex
	notes map[uuid.UUID]*entity.Note
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{
		notes: make(map[uuid.UUID]*entity.Note),
	}
}

func cloneNote(n *entity.Note) *entity.Note {
	c := *n
	if n.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(n.Metadata))
		for k, v := range n.Metadata {
			c.Metadata[k] = v
		}
	}
	if n.IndexedAt != nil {
		t := *n.IndexedAt
		c.IndexedAt = &t
	}
	return &c
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *NoteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[note.Id] = cloneNote(note)
	return nil
}

func (r *NoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, nil
	}
	return cloneNote(n), nil
}

func (r *NoteRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entity.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := r.notes[id]; ok {
			result = append(result, cloneNote(n))
		}
	}
	return result, nil
}

func (r *NoteRepository) matching(filter contract.NoteFilter) []*entity.Note {
	query := strings.ToLower(filter.TextContains)
	result := make([]*entity.Note, 0, len(r.notes))
	for _, n := range r.notes {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, n.Status) {
			continue
		}
		if filter.ExcludeDeleted && n.Status == entity.NoteStatusDeleted {
			continue
		}
		if filter.EmbeddingVersionNot != "" && n.EmbeddingVersion == filter.EmbeddingVersionNot {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(n.Text), query) {
			continue
		}
		result = append(result, cloneNote(n))
	}
	return result
}

func (r *NoteRepository) FindAll(ctx context.Context, filter contract.NoteFilter) ([]*entity.Note, error) {
	r.mu.RLock()
	result := r.matching(filter)
	r.mu.RUnlock()

	key := func(n *entity.Note) int64 {
		if filter.OrderBy == "created_at" {
			return n.CreatedAt.UnixNano()
		}
		return n.UpdatedAt.UnixNano()
	}
	sort.SliceStable(result, func(i, j int) bool {
		ki, kj := key(result[i]), key(result[j])
		if ki == kj {
			if filter.Desc {
				return result[i].Id.String() > result[j].Id.String()
			}
			return result[i].Id.String() < result[j].Id.String()
		}
		if filter.Desc {
			return ki > kj
		}
		return ki < kj
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*entity.Note{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *NoteRepository) Count(ctx context.Context, filter contract.NoteFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *NoteRepository) Purge(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, id)
	return nil
}

func containsStatus(statuses []entity.NoteStatus, s entity.NoteStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

package memory

import (
	"time"

	"ai-notes-assistant/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last save and
// purges expired items every cleanup interval.
func NewSessionRepository(ttl, cleanup time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SessionRepository) Save(session *entity.ChatSession) {
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID uuid.UUID) (*entity.ChatSession, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		return x.(*entity.ChatSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"luastyle/internal/domain/entities"
	domainrepos "luastyle/internal/domain/repositories"
)

// CacheSessionRepository keeps sessions in memory and expires them after ttl
// of inactivity. An expired or deleted session is reset, which cancels any
// generation it still has in flight.
type CacheSessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewCacheSessionRepository(ttl time.Duration) domainrepos.SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanup := ttl / 2
	if ttl == cache.NoExpiration || cleanup < time.Second {
		cleanup = time.Minute
	}

	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, value interface{}) {
		if session, ok := value.(*entities.Session); ok {
			session.Reset()
		}
		slog.Info("session evicted", "session_id", id)
	})

	return &CacheSessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *CacheSessionRepository) Save(ctx context.Context, session *entities.Session) error {
	r.cache.Set(string(session.ID()), session, cache.DefaultExpiration)
	return nil
}

// FindByID returns the session and extends its lifetime. Replace only
// succeeds while the entry is still present, so a lookup never brings back a
// session that was deleted or expired after the Get. A caller racing with
// Delete may still receive the session once, already reset.
func (r *CacheSessionRepository) FindByID(ctx context.Context, id entities.SessionID) (*entities.Session, error) {
	value, found := r.cache.Get(string(id))
	if !found {
		return nil, entities.ErrSessionNotFound
	}

	session := value.(*entities.Session)
	if err := r.cache.Replace(string(id), session, cache.DefaultExpiration); err != nil {
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}

func (r *CacheSessionRepository) Delete(ctx context.Context, id entities.SessionID) error {
	r.cache.Delete(string(id))
	return nil
}

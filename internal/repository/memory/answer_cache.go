package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// AnswerCache keeps recent Q&A answers so the degraded fallback path can
// reuse them when the reviewer-assistant execution unit is unreachable.
type AnswerCache struct {
	cache *cache.Cache
}

func NewAnswerCache() *AnswerCache {
	// Default expiration 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &AnswerCache{
		cache: c,
	}
}

func (r *AnswerCache) Save(key string, answer string) {
	r.cache.Set(key, answer, cache.DefaultExpiration)
}

func (r *AnswerCache) Get(key string) (string, bool) {
	if x, found := r.cache.Get(key); found {
		return x.(string), true
	}
	return "", false
}

func (r *AnswerCache) Delete(key string) {
	r.cache.Delete(key)
}

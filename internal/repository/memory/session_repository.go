package memory

import (
	"sort"

	"github.com/patrickmn/go-cache"

	"heystack-be/pkg/store"
)

// SessionRepository keeps every session context in memory, keyed by sender.
// Entries never expire: a session lives as long as the store does.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Save stores a copy of session under sender
func (r *SessionRepository) Save(sender string, session *store.Session) {
	r.cache.Set(sender, session.Clone(), cache.NoExpiration)
}

// Get returns a copy of the session of sender
func (r *SessionRepository) Get(sender string) (*store.Session, bool) {
	if x, found := r.cache.Get(sender); found {
		return x.(*store.Session).Clone(), true
	}
	return nil, false
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// Senders lists the known senders in sorted order
func (r *SessionRepository) Senders() []string {
	items := r.cache.Items()
	out := make([]string, 0, len(items))
	for k := range items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Replace drops everything and loads sessions
func (r *SessionRepository) Replace(sessions map[string]*store.Session) {
	r.cache.Flush()
	for k, s := range sessions {
		r.Save(k, s)
	}
}

package app

import (
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry owns the session table and the presence map. Presence is
// informational only: last writer wins when a user opens a second connection,
// and nothing authorizes against it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]*core.Session
	presence map[domain.UserID]core.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.ConnID]*core.Session),
		presence: make(map[domain.UserID]core.ConnID),
	}
}

func (r *Registry) Bind(s *core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	r.presence[s.User] = s.ID
	log.Info().Str("module", "app.registry").Str("conn", string(s.ID)).Str("user", string(s.User)).Msg("bound session")
}

func (r *Registry) Unbind(s *core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)
	// A newer connection of the same user may already own the presence slot.
	if r.presence[s.User] == s.ID {
		delete(r.presence, s.User)
	}
	log.Info().Str("module", "app.registry").Str("conn", string(s.ID)).Msg("unbound session")
}

func (r *Registry) Get(id core.ConnID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Online returns the users currently holding a presence slot.
func (r *Registry) Online() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UserID, 0, len(r.presence))
	for u := range r.presence {
		out = append(out, u)
	}
	return out
}

func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

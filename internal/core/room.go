package core

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room is a threadsafe in-memory membership set for one channel.
// It never closes adapter-owned resources; membership is reconstructed
// purely from live connections and is never persisted.
type Room struct {
	channel domain.ChannelID

	mu      sync.RWMutex
	members map[ConnID]*Session
}

func NewRoom(ch domain.ChannelID) *Room {
	return &Room{channel: ch, members: make(map[ConnID]*Session)}
}

func (r *Room) Channel() domain.ChannelID { return r.channel }

func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Add inserts the session; false means it was already a member.
func (r *Room) Add(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[s.ID]; ok {
		return false
	}
	r.members[s.ID] = s
	log.Debug().Str("module", "core.room").Str("channel", string(r.channel)).Str("conn", string(s.ID)).Msg("member added")
	return true
}

func (r *Room) Remove(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	log.Debug().Str("module", "core.room").Str("channel", string(r.channel)).Str("conn", string(id)).Msg("member removed")
	return true
}

func (r *Room) Contains(id ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

// Snapshot returns the members at this instant.
func (r *Room) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.members))
	for _, s := range r.members {
		out = append(out, s)
	}
	return out
}

// Participants is the voice-room view used for joined/left notifications.
func (r *Room) Participants() []domain.VoiceParticipant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.VoiceParticipant, 0, len(r.members))
	for _, s := range r.members {
		out = append(out, domain.VoiceParticipant{UserID: s.User, ConnID: string(s.ID)})
	}
	return out
}

// Broadcast sends data to every member except the excluded connection
// (ConnID("") excludes nobody). Delivery is best-effort: a member whose send
// queue is full is reported in Dropped and receives nothing. Broadcasts of one
// room are serialized under the write lock so every subscriber observes the
// same per-room order.
func (r *Room) Broadcast(data Frame, except ConnID) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := PublishResult{}
	for id, s := range r.members {
		if id == except {
			continue
		}
		if err := s.Conn().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.Delivered++
	}
	log.Debug().Str("module", "core.room").Str("channel", string(r.channel)).Int("delivered", res.Delivered).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

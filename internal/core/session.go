package core

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
)

// Session is one authenticated realtime connection plus its room
// subscriptions. Created by the gateway after the handshake succeeded;
// the subscription sets exist so the disconnect cascade knows what to leave.
type Session struct {
	ID   ConnID
	User domain.UserID

	conn SignalConnection

	mu    sync.RWMutex
	text  map[domain.ChannelID]struct{}
	voice map[domain.ChannelID]struct{}
}

func NewSession(id ConnID, user domain.UserID, conn SignalConnection) *Session {
	return &Session{
		ID:    id,
		User:  user,
		conn:  conn,
		text:  make(map[domain.ChannelID]struct{}),
		voice: make(map[domain.ChannelID]struct{}),
	}
}

func (s *Session) Conn() SignalConnection { return s.conn }

// AddText records a text subscription. Reports false when already present,
// which keeps joins idempotent upstream.
func (s *Session) AddText(ch domain.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.text[ch]; ok {
		return false
	}
	s.text[ch] = struct{}{}
	return true
}

func (s *Session) RemoveText(ch domain.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.text[ch]; !ok {
		return false
	}
	delete(s.text, ch)
	return true
}

func (s *Session) AddVoice(ch domain.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voice[ch]; ok {
		return false
	}
	s.voice[ch] = struct{}{}
	return true
}

func (s *Session) RemoveVoice(ch domain.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voice[ch]; !ok {
		return false
	}
	delete(s.voice, ch)
	return true
}

func (s *Session) TextChannels() []domain.ChannelID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChannelID, 0, len(s.text))
	for ch := range s.text {
		out = append(out, ch)
	}
	return out
}

func (s *Session) VoiceChannels() []domain.ChannelID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChannelID, 0, len(s.voice))
	for ch := range s.voice {
		out = append(out, ch)
	}
	return out
}

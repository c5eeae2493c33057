package app

import (
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

// RoomManager tracks two independent planes of rooms keyed by channel id:
// text fan-out rooms and voice signaling rooms. Rooms are created on first
// join and dropped once empty; nothing about them is persisted.
type RoomManager struct {
	mu    sync.RWMutex
	text  map[domain.ChannelID]*core.Room
	voice map[domain.ChannelID]*core.Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		text:  make(map[domain.ChannelID]*core.Room),
		voice: make(map[domain.ChannelID]*core.Room),
	}
}

func (m *RoomManager) Text(ch domain.ChannelID) (*core.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.text[ch]
	return r, ok
}

func (m *RoomManager) Voice(ch domain.ChannelID) (*core.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.voice[ch]
	return r, ok
}

func (m *RoomManager) TextRoom(ch domain.ChannelID) *core.Room {
	return getOrCreate(m, m.text, ch)
}

func (m *RoomManager) VoiceRoom(ch domain.ChannelID) *core.Room {
	return getOrCreate(m, m.voice, ch)
}

func getOrCreate(m *RoomManager, plane map[domain.ChannelID]*core.Room, ch domain.ChannelID) *core.Room {
	m.mu.RLock()
	r, ok := plane[ch]
	m.mu.RUnlock()
	if ok {
		return r
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok = plane[ch]; ok {
		return r
	}
	r = core.NewRoom(ch)
	plane[ch] = r
	return r
}

// DropTextIfEmpty removes the room entry once its last member left.
func (m *RoomManager) DropTextIfEmpty(ch domain.ChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.text[ch]; ok && r.Size() == 0 {
		delete(m.text, ch)
	}
}

func (m *RoomManager) DropVoiceIfEmpty(ch domain.ChannelID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.voice[ch]; ok && r.Size() == 0 {
		delete(m.voice, ch)
	}
}

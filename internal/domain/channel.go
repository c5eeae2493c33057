package domain

// ChannelID identifies a text or voice channel. Rooms are keyed by it; the
// channel record itself lives in the store.
type ChannelID string

type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
)

type Channel struct {
	ID   ChannelID   `json:"id"`
	Name string      `json:"name"`
	Kind ChannelKind `json:"type"`
}

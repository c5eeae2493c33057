package domain

import "time"

// Message is the persisted chat record. Immutable once the store assigned ID;
// ordering within a channel follows the assigned monotonic id.
type Message struct {
	ID        uint64    `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
	UserID    UserID    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

package core

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// Frame is a raw wire payload, already encoded.
type Frame []byte

// ConnID identifies one live realtime connection.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the gateway.
type PublishResult struct {
	Delivered int
	Dropped   []ConnID
}

// TokenVerifier is the external auth collaborator. Verify maps a bearer
// credential to a user id or fails; the gateway never inspects the credential.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (domain.UserID, error)
}

// MessageStore is the external persistence collaborator.
type MessageStore interface {
	// InsertMessage persists a chat message and returns the stored record
	// with its assigned monotonic id and the author's username resolved.
	InsertMessage(ctx context.Context, ch domain.ChannelID, user domain.UserID, body string) (*domain.Message, error)
	LookupUsername(ctx context.Context, user domain.UserID) (string, error)
	// RecentMessages returns up to limit messages of ch, oldest first.
	RecentMessages(ctx context.Context, ch domain.ChannelID, limit int) ([]domain.Message, error)
}

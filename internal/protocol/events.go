// Package protocol defines the realtime wire contract: one tagged variant per
// event, flat JSON with a "type" discriminator. Both the server adapter and
// the voice client decode through this package, so the event set stays closed.
package protocol

import (
	"encoding/json"

	"github.com/dkeye/Huddle/internal/domain"
)

type Kind string

const (
	// client → server
	KindJoinChannel  Kind = "join_channel"
	KindLeaveChannel Kind = "leave_channel"
	KindSendMessage  Kind = "send_message"
	KindTyping       Kind = "typing"
	KindJoinVoice    Kind = "join_voice"
	KindLeaveVoice   Kind = "leave_voice"

	// server → clients
	KindNewMessage      Kind = "new_message"
	KindUserTyping      Kind = "user_typing"
	KindUserJoinedVoice Kind = "user_joined_voice"
	KindUserLeftVoice   Kind = "user_left_voice"
	KindError           Kind = "error"

	// both directions; addressed unicast, payload opaque
	KindOffer     Kind = "webrtc_offer"
	KindAnswer    Kind = "webrtc_answer"
	KindCandidate Kind = "webrtc_ice_candidate"
)

type JoinChannel struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

type LeaveChannel struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

type SendMessage struct {
	ChannelID domain.ChannelID `json:"channelId"`
	Body      string           `json:"message"`
}

type Typing struct {
	ChannelID domain.ChannelID `json:"channelId"`
	Username  string           `json:"username"`
}

type JoinVoice struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

type LeaveVoice struct {
	ChannelID domain.ChannelID `json:"channelId"`
}

// Offer, Answer and Candidate carry negotiation payloads verbatim.
// Client→server they name a target connection; relayed server→target the
// target is replaced by the sender's connection id.
type Offer struct {
	Target  string          `json:"targetSocketId,omitempty"`
	From    string          `json:"fromSocketId,omitempty"`
	Payload json.RawMessage `json:"offer"`
}

type Answer struct {
	Target  string          `json:"targetSocketId,omitempty"`
	From    string          `json:"fromSocketId,omitempty"`
	Payload json.RawMessage `json:"answer"`
}

type Candidate struct {
	Target  string          `json:"targetSocketId,omitempty"`
	From    string          `json:"fromSocketId,omitempty"`
	Payload json.RawMessage `json:"candidate"`
}

type UserTyping struct {
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

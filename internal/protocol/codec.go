package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Huddle/internal/domain"
)

// ClientEvent is the closed set of events a connection may send.
type ClientEvent interface{ clientEvent() }

func (JoinChannel) clientEvent()  {}
func (LeaveChannel) clientEvent() {}
func (SendMessage) clientEvent()  {}
func (Typing) clientEvent()       {}
func (JoinVoice) clientEvent()    {}
func (LeaveVoice) clientEvent()   {}
func (Offer) clientEvent()        {}
func (Answer) clientEvent()       {}
func (Candidate) clientEvent()    {}

// ServerEvent is the closed set of events the server pushes.
type ServerEvent interface{ serverEvent() }

type NewMessage struct {
	domain.Message
}

type UserJoinedVoice struct {
	domain.VoiceParticipant
}

type UserLeftVoice struct {
	domain.VoiceParticipant
}

func (NewMessage) serverEvent()      {}
func (UserTyping) serverEvent()      {}
func (UserJoinedVoice) serverEvent() {}
func (UserLeftVoice) serverEvent()   {}
func (ErrorEvent) serverEvent()      {}
func (Offer) serverEvent()           {}
func (Answer) serverEvent()          {}
func (Candidate) serverEvent()       {}

type envelope struct {
	Type Kind `json:"type"`
}

// KindOf names the wire tag of a client event.
func KindOf(ev ClientEvent) Kind {
	switch ev.(type) {
	case JoinChannel:
		return KindJoinChannel
	case LeaveChannel:
		return KindLeaveChannel
	case SendMessage:
		return KindSendMessage
	case Typing:
		return KindTyping
	case JoinVoice:
		return KindJoinVoice
	case LeaveVoice:
		return KindLeaveVoice
	case Offer:
		return KindOffer
	case Answer:
		return KindAnswer
	case Candidate:
		return KindCandidate
	default:
		return ""
	}
}

// DecodeClient parses one inbound frame into its typed variant.
func DecodeClient(data []byte) (ClientEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}
	switch env.Type {
	case KindJoinChannel:
		return decodeAs[JoinChannel](data)
	case KindLeaveChannel:
		return decodeAs[LeaveChannel](data)
	case KindSendMessage:
		return decodeAs[SendMessage](data)
	case KindTyping:
		return decodeAs[Typing](data)
	case KindJoinVoice:
		return decodeAs[JoinVoice](data)
	case KindLeaveVoice:
		return decodeAs[LeaveVoice](data)
	case KindOffer:
		return decodeAs[Offer](data)
	case KindAnswer:
		return decodeAs[Answer](data)
	case KindCandidate:
		return decodeAs[Candidate](data)
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// DecodeServer parses one server push on the client side.
func DecodeServer(data []byte) (ServerEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("bad envelope: %w", err)
	}
	switch env.Type {
	case KindNewMessage:
		return decodeAs[NewMessage](data)
	case KindUserTyping:
		return decodeAs[UserTyping](data)
	case KindUserJoinedVoice:
		return decodeAs[UserJoinedVoice](data)
	case KindUserLeftVoice:
		return decodeAs[UserLeftVoice](data)
	case KindError:
		return decodeAs[ErrorEvent](data)
	case KindOffer:
		return decodeAs[Offer](data)
	case KindAnswer:
		return decodeAs[Answer](data)
	case KindCandidate:
		return decodeAs[Candidate](data)
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func decodeAs[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// Encode wraps v in the flat tagged form. v is any event struct; the type tag
// is injected so payload structs stay free of it.
func Encode(kind Kind, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("event payload must be an object, got %s", body)
	}
	tag, err := json.Marshal(envelope{Type: kind})
	if err != nil {
		return nil, err
	}
	if string(body) == "{}" {
		return tag, nil
	}
	// splice: {"type":"..."} + rest of the payload object
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag[:len(tag)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

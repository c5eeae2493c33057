package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
)

// Gateway is the connection-scoped event surface: handshake, membership,
// message fan-out and the unicast signaling relay. Failures stay local to the
// handler that raised them; one session's error never touches another's rooms.
type Gateway struct {
	Registry *Registry
	Rooms    *RoomManager
	Auth     core.TokenVerifier
	Store    core.MessageStore
}

func NewGateway(auth core.TokenVerifier, store core.MessageStore) *Gateway {
	return &Gateway{
		Registry: NewRegistry(),
		Rooms:    NewRoomManager(),
		Auth:     auth,
		Store:    store,
	}
}

// Authenticate verifies the bearer credential and creates the session.
// A connection that fails here is refused before any event handler runs;
// no partial session is left behind.
func (g *Gateway) Authenticate(ctx context.Context, credential string, conn core.SignalConnection) (*core.Session, error) {
	if credential == "" {
		return nil, core.AuthError(errors.New("missing credential"))
	}
	user, err := g.Auth.Verify(ctx, credential)
	if err != nil {
		return nil, core.AuthError(err)
	}
	sess := core.NewSession(core.ConnID(uuid.NewString()), user, conn)
	g.Registry.Bind(sess)
	return sess, nil
}

// Disconnect cascades removal from every room the session was subscribed to,
// exactly once each, then frees the presence slot.
func (g *Gateway) Disconnect(sess *core.Session) {
	for _, ch := range sess.TextChannels() {
		g.LeaveText(sess, ch)
	}
	for _, ch := range sess.VoiceChannels() {
		g.LeaveVoice(sess, ch)
	}
	g.Registry.Unbind(sess)
	log.Info().Str("module", "app.gateway").Str("conn", string(sess.ID)).Str("user", string(sess.User)).Msg("disconnected")
}

// JoinText subscribes the connection to a channel's fan-out. Idempotent.
// Authorization is the caller's concern: the collaborator that issued the
// join already checked group membership.
func (g *Gateway) JoinText(sess *core.Session, ch domain.ChannelID) {
	sess.AddText(ch)
	g.Rooms.TextRoom(ch).Add(sess)
	log.Info().Str("module", "app.gateway").Str("conn", string(sess.ID)).Str("channel", string(ch)).Msg("joined channel")
}

func (g *Gateway) LeaveText(sess *core.Session, ch domain.ChannelID) {
	if !sess.RemoveText(ch) {
		return
	}
	if room, ok := g.Rooms.Text(ch); ok {
		room.Remove(sess.ID)
		g.Rooms.DropTextIfEmpty(ch)
	}
	log.Info().Str("module", "app.gateway").Str("conn", string(sess.ID)).Str("channel", string(ch)).Msg("left channel")
}

// Typing forwards a typing indicator to everyone in the room except the
// sender. Not persisted, best-effort.
func (g *Gateway) Typing(sess *core.Session, ch domain.ChannelID, username string) {
	room, ok := g.Rooms.Text(ch)
	if !ok {
		return
	}
	data, err := protocol.Encode(protocol.KindUserTyping, protocol.UserTyping{
		UserID:   sess.User,
		Username: username,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("encode user_typing")
		return
	}
	room.Broadcast(data, sess.ID)
}

// Submit persists a chat message and fans it out to every current subscriber
// of the channel, the sender's own connection included, so a user with two
// open connections sees the same order on both. A store failure is surfaced
// to the sender only and nothing is broadcast.
func (g *Gateway) Submit(ctx context.Context, sess *core.Session, ch domain.ChannelID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, core.ValidationError("empty message")
	}

	msg, err := g.Store.InsertMessage(ctx, ch, sess.User, body)
	if err != nil {
		return nil, core.PersistenceError(err)
	}

	room, ok := g.Rooms.Text(ch)
	if !ok {
		// Durably stored, nobody subscribed right now. History recovers it.
		return msg, nil
	}
	data, err := protocol.Encode(protocol.KindNewMessage, msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("encode new_message")
		return msg, nil
	}
	res := room.Broadcast(data, "")
	log.Debug().Str("module", "app.gateway").Str("channel", string(ch)).Uint64("id", msg.ID).Int("delivered", res.Delivered).Msg("message fanned out")
	return msg, nil
}

// JoinVoice adds the connection to a voice room and announces it to every
// other current member, never to the joiner. No participant cap is enforced
// here; the six-member limit is advisory and lives client-side.
func (g *Gateway) JoinVoice(sess *core.Session, ch domain.ChannelID) {
	if !sess.AddVoice(ch) {
		return
	}
	room := g.Rooms.VoiceRoom(ch)
	room.Add(sess)
	data, err := protocol.Encode(protocol.KindUserJoinedVoice, domain.VoiceParticipant{
		UserID: sess.User,
		ConnID: string(sess.ID),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("encode user_joined_voice")
		return
	}
	room.Broadcast(data, sess.ID)
	log.Info().Str("module", "app.gateway").Str("conn", string(sess.ID)).Str("channel", string(ch)).Msg("joined voice")
}

// LeaveVoice removes the participant and tells the remaining members once.
func (g *Gateway) LeaveVoice(sess *core.Session, ch domain.ChannelID) {
	if !sess.RemoveVoice(ch) {
		return
	}
	room, ok := g.Rooms.Voice(ch)
	if !ok {
		return
	}
	room.Remove(sess.ID)
	data, err := protocol.Encode(protocol.KindUserLeftVoice, domain.VoiceParticipant{
		UserID: sess.User,
		ConnID: string(sess.ID),
	})
	if err == nil {
		room.Broadcast(data, sess.ID)
	}
	g.Rooms.DropVoiceIfEmpty(ch)
	log.Info().Str("module", "app.gateway").Str("conn", string(sess.ID)).Str("channel", string(ch)).Msg("left voice")
}

// Relay forwards one negotiation payload to exactly one connection, verbatim.
// A dead target means the frame is dropped on the floor: no error to the
// sender, no acknowledgment ever. Callers must tolerate silence.
func (g *Gateway) Relay(kind protocol.Kind, sess *core.Session, target core.ConnID, payload json.RawMessage) {
	tgt, ok := g.Registry.Get(target)
	if !ok {
		log.Debug().Str("module", "app.gateway").Str("target", string(target)).Str("kind", string(kind)).Msg("relay target gone, dropping")
		return
	}

	var v any
	switch kind {
	case protocol.KindOffer:
		v = protocol.Offer{From: string(sess.ID), Payload: payload}
	case protocol.KindAnswer:
		v = protocol.Answer{From: string(sess.ID), Payload: payload}
	case protocol.KindCandidate:
		v = protocol.Candidate{From: string(sess.ID), Payload: payload}
	default:
		log.Warn().Str("module", "app.gateway").Str("kind", string(kind)).Msg("relay of non-signaling kind refused")
		return
	}
	data, err := protocol.Encode(kind, v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Msg("encode relay")
		return
	}
	// Backpressure on the target is absorbed the same way as a dead target.
	_ = tgt.Conn().TrySend(data)
}

package signal

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

func (ctl *Controller) handleJoinChannel(sess *core.Session, ev protocol.JoinChannel) {
	if ev.ChannelID == "" {
		return
	}
	ctl.Gateway.JoinText(sess, ev.ChannelID)
}

func (ctl *Controller) handleLeaveChannel(sess *core.Session, ev protocol.LeaveChannel) {
	if ev.ChannelID == "" {
		return
	}
	ctl.Gateway.LeaveText(sess, ev.ChannelID)
}

// handleSendMessage surfaces validation and persistence failures to the
// sender only; the rest of the room is untouched by them.
func (ctl *Controller) handleSendMessage(ctx context.Context, sess *core.Session, c *WsConn, ev protocol.SendMessage) {
	_, err := ctl.Gateway.Submit(ctx, sess, ev.ChannelID, ev.Body)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, core.ErrValidation):
		ctl.sendError(c, "message must not be empty")
	case errors.Is(err, core.ErrPersistence):
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("message persist failed")
		ctl.sendError(c, "failed to send message")
	default:
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("send_message")
		ctl.sendError(c, "failed to send message")
	}
}

func (ctl *Controller) handleTyping(sess *core.Session, ev protocol.Typing) {
	if ev.ChannelID == "" {
		return
	}
	ctl.Gateway.Typing(sess, ev.ChannelID, ev.Username)
}

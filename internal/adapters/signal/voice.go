package signal

import (
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

func (ctl *Controller) handleJoinVoice(sess *core.Session, ev protocol.JoinVoice) {
	if ev.ChannelID == "" {
		return
	}
	ctl.Gateway.JoinVoice(sess, ev.ChannelID)
}

func (ctl *Controller) handleLeaveVoice(sess *core.Session, ev protocol.LeaveVoice) {
	if ev.ChannelID == "" {
		return
	}
	ctl.Gateway.LeaveVoice(sess, ev.ChannelID)
}

package signal

import (
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

// Negotiation payloads pass through opaque; the relay never inspects SDP or
// candidates. A vanished target is dropped without a word to the sender.

func (ctl *Controller) handleOffer(sess *core.Session, ev protocol.Offer) {
	if ev.Target == "" {
		return
	}
	ctl.Gateway.Relay(protocol.KindOffer, sess, core.ConnID(ev.Target), ev.Payload)
}

func (ctl *Controller) handleAnswer(sess *core.Session, ev protocol.Answer) {
	if ev.Target == "" {
		return
	}
	ctl.Gateway.Relay(protocol.KindAnswer, sess, core.ConnID(ev.Target), ev.Payload)
}

func (ctl *Controller) handleCandidate(sess *core.Session, ev protocol.Candidate) {
	if ev.Target == "" {
		return
	}
	ctl.Gateway.Relay(protocol.KindCandidate, sess, core.ConnID(ev.Target), ev.Payload)
}

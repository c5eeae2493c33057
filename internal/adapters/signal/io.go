package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/protocol"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sess *core.Session, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.ID)).Msg("readPump closing")
		ctl.Gateway.Disconnect(sess)
		cancel()
		c.Close()
	}()

	pongWait := ctl.Cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("readPump read error")
			}
			return
		}
		ctl.dispatch(ctx, sess, c, data)
	}
}

// dispatch decodes one frame into its typed variant and routes it.
// The switch is exhaustive over protocol.ClientEvent.
func (ctl *Controller) dispatch(ctx context.Context, sess *core.Session, c *WsConn, data []byte) {
	ev, err := protocol.DecodeClient(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.ID)).Msg("bad frame")
		ctl.sendError(c, "bad frame")
		return
	}

	switch ev := ev.(type) {
	case protocol.JoinChannel:
		ctl.handleJoinChannel(sess, ev)
	case protocol.LeaveChannel:
		ctl.handleLeaveChannel(sess, ev)
	case protocol.SendMessage:
		ctl.handleSendMessage(ctx, sess, c, ev)
	case protocol.Typing:
		ctl.handleTyping(sess, ev)
	case protocol.JoinVoice:
		ctl.handleJoinVoice(sess, ev)
	case protocol.LeaveVoice:
		ctl.handleLeaveVoice(sess, ev)
	case protocol.Offer:
		ctl.handleOffer(sess, ev)
	case protocol.Answer:
		ctl.handleAnswer(sess, ev)
	case protocol.Candidate:
		ctl.handleCandidate(sess, ev)
	}
}

func (ctl *Controller) sendError(c *WsConn, msg string) {
	data, err := protocol.Encode(protocol.KindError, protocol.ErrorEvent{Message: msg})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("encode error event")
		return
	}
	_ = c.TrySend(data)
}

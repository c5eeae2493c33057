package mesh

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/protocol"
)

// WSSignaler speaks the realtime protocol over one gorilla client
// connection. The bearer credential rides the query string, same as the
// browser client does it.
type WSSignaler struct {
	conn   *websocket.Conn
	events chan protocol.ServerEvent

	writeMu sync.Mutex
	once    sync.Once
}

func DialSignaler(ctx context.Context, serverURL, token string) (*WSSignaler, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", u.Host, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	s := &WSSignaler{
		conn:   conn,
		events: make(chan protocol.ServerEvent, 32),
	}
	go s.readLoop()
	return s, nil
}

func (s *WSSignaler) Send(ev protocol.ClientEvent) error {
	kind := protocol.KindOf(ev)
	if kind == "" {
		return fmt.Errorf("unknown client event %T", ev)
	}
	data, err := protocol.Encode(kind, ev)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *WSSignaler) Events() <-chan protocol.ServerEvent { return s.events }

func (s *WSSignaler) Close() error {
	var err error
	s.once.Do(func() {
		err = s.conn.Close()
	})
	return err
}

func (s *WSSignaler) readLoop() {
	defer func() {
		_ = s.Close()
		close(s.events)
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "mesh.signaler").Msg("read error")
			}
			return
		}
		ev, err := protocol.DecodeServer(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "mesh.signaler").Msg("undecodable server event")
			continue
		}
		s.events <- ev
	}
}

// Package signal is the realtime transport adapter: it owns the WebSocket
// upgrade, the per-connection pumps and the decode of wire events into
// gateway calls. It never touches room state directly.
package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
)

type Controller struct {
	Gateway *app.Gateway
	Cfg     *config.Config
}

func NewController(gw *app.Gateway, cfg *config.Config) *Controller {
	return &Controller{Gateway: gw, Cfg: cfg}
}

// WsConn adapts one gorilla connection to core.SignalConnection.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Credential pulls the bearer token from the query string or the
// Authorization header; browsers can't set headers on WS dials.
func Credential(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	hdr := c.GetHeader("Authorization")
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Handle upgrades one authenticated connection and starts its pumps.
// A bad credential is refused at the HTTP layer, before the upgrade, so no
// event handler ever runs for it.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	credential := Credential(c)
	if credential == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	if _, err := ctl.Gateway.Auth.Verify(c.Request.Context(), credential); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	// The credential may have been revoked between the pre-check and here.
	sess, err := ctl.Gateway.Authenticate(ctx, credential, conn)
	if err != nil {
		if !errors.Is(err, core.ErrAuth) {
			log.Error().Err(err).Str("module", "signal").Msg("handshake")
		}
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sess.ID)).Str("user", string(sess.User)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}

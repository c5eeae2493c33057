// Package httpapi mounts the REST surface next to the realtime endpoint:
// bounded history fetch, channel listing and the informational presence view.
package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/storage"
)

func SetupRouter(ctx context.Context, cfg *config.Config, gw *app.Gateway, store *storage.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	ctl := signal.NewController(gw, cfg)
	api := r.Group("/api")

	// WS handshake carries its own credential; no middleware here.
	api.GET("/ws", func(c *gin.Context) {
		ctl.Handle(ctx, c)
	})

	authed := api.Group("/", BearerAuth(gw.Auth))
	authed.GET("/channels", listChannels(store))
	authed.GET("/channels/:channelId/messages", channelHistory(cfg, store))
	authed.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"online": gw.Registry.Online(), "you": currentUser(c)})
	})

	log.Info().Str("module", "httpapi").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}

func listChannels(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		channels, err := store.Channels(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, channels)
	}
}

// channelHistory is the catch-up path: a subscriber that missed a live
// broadcast re-fetches the recent window on (re)join.
func channelHistory(cfg *config.Config, store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ch := domain.ChannelID(c.Param("channelId"))
		limit := cfg.HistoryLimit
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
				limit = n
			}
		}
		messages, err := store.RecentMessages(c.Request.Context(), ch, limit)
		if err != nil {
			log.Error().Err(err).Str("module", "httpapi").Str("channel", string(ch)).Msg("history fetch")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

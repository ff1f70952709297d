package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/deck"
	imagepkg "github.com/youruser/hvdeck/internal/image"
	"github.com/youruser/hvdeck/internal/search"
	"github.com/youruser/hvdeck/internal/storage"
	"github.com/youruser/hvdeck/internal/ws"
)

// Server holds what the handlers need. Catalog, Pipeline, Store and KV are
// required; the rest may be left nil to disable the routes that use them.
type Server struct {
	Catalog  *cards.Catalog
	Pipeline *search.Pipeline
	Store    *deck.Store
	KV       storage.KV

	// Window receives picks posted to /api/deck/pick.
	Window *bridge.Window
	Hub    *ws.Hub
	// Picks is the sender handed to /ws/search sessions.
	Picks  bridge.Sender
	Images imagepkg.ImageFetcher

	ImageDir string
	BaseURL  string
	Logger   *slog.Logger

	// Context bounds websocket sessions. Background when nil.
	Context context.Context
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) context() context.Context {
	if s.Context == nil {
		return context.Background()
	}
	return s.Context
}

func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.GET("/cards/:id", s.cardHandler)
		api.GET("/search", s.searchQueryHandler)
		api.POST("/search", s.searchBodyHandler)
		api.GET("/search/window", s.windowHandler)
	}

	d := api.Group("/deck")
	{
		d.GET("", s.deckHandler)
		d.POST("/cards/:id", s.pickByIDHandler)
		d.PUT("/cards/:id", s.setCountHandler)
		d.POST("/cards/:id/increment", s.incrementHandler)
		d.POST("/cards/:id/decrement", s.decrementHandler)
		d.DELETE("/cards/:id", s.removeHandler)
		d.POST("/reorder", s.reorderHandler)
		d.POST("/swap", s.swapHandler)

		d.POST("/export", s.exportHandler)
		d.GET("/export", s.snapshotHandler)
		d.GET("/export/text", s.snapshotTextHandler)
		d.GET("/export/image", s.snapshotImageHandler)

		if s.Window != nil {
			d.POST("/pick", s.directPickHandler)
		}
	}

	if s.Hub != nil {
		r.GET("/ws/deck", gin.WrapF(s.Hub.ServeDeck))
		if s.Picks != nil {
			svc := ws.SearchService{Pipeline: s.Pipeline, Catalog: s.Catalog, Picks: s.Picks}
			r.GET("/ws/search", func(c *gin.Context) {
				s.Hub.ServeSearch(s.context(), svc, c.Writer, c.Request)
			})
		}
	}

	if s.ImageDir != "" {
		r.Static(cards.ImageURLPrefix, s.ImageDir)
	}
}

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/deck"
	imagepkg "github.com/youruser/hvdeck/internal/image"
	"github.com/youruser/hvdeck/internal/ws"
)

// maxPickBody bounds a posted pick message.
const maxPickBody = 64 << 10

func statusFor(err error) int {
	switch {
	case errors.Is(err, deck.ErrNotInDeck), errors.Is(err, deck.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, deck.ErrInvalidCount), errors.Is(err, deck.ErrNotAdjacent):
		return http.StatusBadRequest
	case errors.Is(err, deck.ErrDeckTooLarge):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger().Error("deck request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (s *Server) deckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, ws.NewDeckView(s.Store.Entries()))
}

func (s *Server) entryResult(c *gin.Context, e deck.Entry, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deckResult(c *gin.Context, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deckHandler(c)
}

func (s *Server) pickByIDHandler(c *gin.Context) {
	e, err := s.Store.PickByID(c.Request.Context(), c.Param("id"))
	s.entryResult(c, e, err)
}

func (s *Server) setCountHandler(c *gin.Context) {
	var req struct {
		Count *int `json:"count" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := s.Store.SetCount(c.Request.Context(), c.Param("id"), *req.Count)
	s.entryResult(c, e, err)
}

func (s *Server) incrementHandler(c *gin.Context) {
	e, err := s.Store.Increment(c.Request.Context(), c.Param("id"))
	s.entryResult(c, e, err)
}

func (s *Server) decrementHandler(c *gin.Context) {
	e, err := s.Store.Decrement(c.Request.Context(), c.Param("id"))
	s.entryResult(c, e, err)
}

func (s *Server) removeHandler(c *gin.Context) {
	s.deckResult(c, s.Store.Remove(c.Request.Context(), c.Param("id")))
}

func (s *Server) reorderHandler(c *gin.Context) {
	var req struct {
		ID    string `json:"id" binding:"required"`
		Index int    `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.deckResult(c, s.Store.Reorder(c.Request.Context(), req.ID, req.Index))
}

func (s *Server) swapHandler(c *gin.Context) {
	var req struct {
		I int `json:"i"`
		J int `json:"j"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.deckResult(c, s.Store.SwapAdjacent(c.Request.Context(), req.I, req.J))
}

// directPickHandler delivers the body to the deck window as a message from
// the request's Origin. Foreign and malformed messages are dropped without
// telling the sender, as a browser would.
func (s *Server) directPickHandler(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPickBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	s.Window.Deliver(bridge.Message{Origin: c.GetHeader("Origin"), Data: data})
	c.Status(http.StatusAccepted)
}

func (s *Server) exportHandler(c *gin.Context) {
	entries := s.Store.Entries()
	err := deck.Export(c.Request.Context(), s.KV, entries)
	switch {
	case errors.Is(err, deck.ErrNoSnapshot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.fail(c, err)
	default:
		c.JSON(http.StatusOK, ws.NewDeckView(entries))
	}
}

func (s *Server) snapshot(c *gin.Context) ([]deck.Entry, bool) {
	entries, err := deck.ReadSnapshot(c.Request.Context(), s.KV)
	if errors.Is(err, deck.ErrNoSnapshot) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return entries, true
}

func (s *Server) snapshotHandler(c *gin.Context) {
	if entries, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, ws.NewDeckView(entries))
	}
}

func (s *Server) snapshotTextHandler(c *gin.Context) {
	if entries, ok := s.snapshot(c); ok {
		c.String(http.StatusOK, deck.ExportText(c.Query("name"), entries))
	}
}

func (s *Server) snapshotImageHandler(c *gin.Context) {
	entries, ok := s.snapshot(c)
	if !ok {
		return
	}
	b, err := imagepkg.RenderDeck(c.Request.Context(), s.Images, entries, s.logger())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

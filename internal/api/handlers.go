package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/hvdeck/internal/cards"
	imagepkg "github.com/youruser/hvdeck/internal/image"
	"github.com/youruser/hvdeck/internal/search"
)

const (
	defaultQRSize = 400
	maxQRSize     = 1024
)

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	size := defaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = min(v, maxQRSize)
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (s *Server) cardHandler(c *gin.Context) {
	card, ok := s.Catalog.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown card " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, card)
}

type searchRequest struct {
	cards.Query
	Page int `json:"page" form:"page"`
}

func (s *Server) searchQueryHandler(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.search(c, req)
}

func (s *Server) searchBodyHandler(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.search(c, req)
}

// search answers one page. Pages are 1-indexed; zero means the first page
// and a page past the end comes back empty.
func (s *Server) search(c *gin.Context, req searchRequest) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	c.JSON(http.StatusOK, s.Pipeline.Search(req.Criteria(), page))
}

func (s *Server) windowHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": search.WindowURL(s.BaseURL, c.Query("keyword"))})
}

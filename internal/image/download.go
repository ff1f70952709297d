package imagepkg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"

	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/util"
)

// Fetcher resolves card image handles to decoded images. Remote handles
// are downloaded under a rate limit; local handles under cards.ImageURLPrefix
// are read from the image directory.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	imageDir string
}

// NewFetcher reads local images from imageDir and waits interval between
// remote downloads.
func NewFetcher(imageDir string, interval time.Duration) *Fetcher {
	lim := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  lim,
		imageDir: imageDir,
	}
}

// Fetch returns the image behind handle.
func (f *Fetcher) Fetch(ctx context.Context, handle string) (image.Image, error) {
	switch {
	case strings.HasPrefix(handle, "http://"), strings.HasPrefix(handle, "https://"):
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := util.GetBytes(ctx, f.client, handle)
		if err != nil {
			return nil, err
		}
		return imaging.Decode(bytes.NewReader(body))
	case strings.HasPrefix(handle, cards.ImageURLPrefix):
		name := filepath.Base(strings.TrimPrefix(handle, cards.ImageURLPrefix))
		return imaging.Open(filepath.Join(f.imageDir, name))
	case handle == "":
		return nil, fmt.Errorf("card has no image")
	}
	return nil, fmt.Errorf("unsupported image handle %q", handle)
}

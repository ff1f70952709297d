// Package imagepkg renders the exported deck as a PNG.
package imagepkg

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"

	"github.com/youruser/hvdeck/internal/deck"
)

// ImageFetcher resolves an image handle.
type ImageFetcher interface {
	Fetch(ctx context.Context, handle string) (image.Image, error)
}

// RenderDeck draws every copy of every entry in deck order, with a QR code
// of the text deck list. Images that fail to load become placeholders.
func RenderDeck(ctx context.Context, f ImageFetcher, entries []deck.Entry, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var tiles []image.Image
	for _, e := range entries {
		var img image.Image
		if f != nil {
			var err error
			img, err = f.Fetch(ctx, e.Card.Image)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Warn("card image unavailable", "card", e.Card.ID, "error", err)
				img = nil
			}
		}
		for i := 0; i < e.Count; i++ {
			tiles = append(tiles, img)
		}
	}

	var qr image.Image
	if text := deck.ExportText("", entries); text != "" {
		q, err := GenerateQRImage(text, 400)
		if err != nil {
			logger.Warn("deck qr failed", "error", err)
		} else {
			qr = q
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, ComposeDeckImage(tiles, qr)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package imagepkg

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Grid layout of the exported deck image: one tile per copy, eight per row.
const (
	Columns    = 8
	TileWidth  = 260
	TileHeight = 364
	Gap        = 24
	Margin     = 48
	qrSize     = 300
)

var (
	background  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	placeholder = color.NRGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
)

// ComposeDeckImage lays tiles out in rows of Columns. A nil tile is drawn
// as a grey placeholder. When qr is not nil it is placed below the grid.
func ComposeDeckImage(tiles []image.Image, qr image.Image) image.Image {
	rows := (len(tiles) + Columns - 1) / Columns
	if rows == 0 {
		rows = 1
	}
	w := Margin*2 + Columns*TileWidth + (Columns-1)*Gap
	h := Margin*2 + rows*TileHeight + (rows-1)*Gap
	if qr != nil {
		h += Gap + qrSize
	}
	canvas := imaging.New(w, h, background)

	for i, t := range tiles {
		x := Margin + (i%Columns)*(TileWidth+Gap)
		y := Margin + (i/Columns)*(TileHeight+Gap)
		if t == nil {
			canvas = imaging.Paste(canvas, imaging.New(TileWidth, TileHeight, placeholder), image.Pt(x, y))
			continue
		}
		canvas = imaging.Paste(canvas, imaging.Fill(t, TileWidth, TileHeight, imaging.Center, imaging.Lanczos), image.Pt(x, y))
	}

	if qr != nil {
		q := imaging.Resize(qr, qrSize, qrSize, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, image.Pt(w-Margin-qrSize, h-Margin-qrSize))
	}
	return canvas
}

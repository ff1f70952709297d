package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/deck"
)

func solid(c color.Color) image.Image {
	return imaging.New(20, 28, c)
}

func TestComposeDeckImage_Size(t *testing.T) {
	tiles := make([]image.Image, 9)
	img := ComposeDeckImage(tiles, nil)

	b := img.Bounds()
	assert.Equal(t, Margin*2+Columns*TileWidth+(Columns-1)*Gap, b.Dx())
	assert.Equal(t, Margin*2+2*TileHeight+Gap, b.Dy())

	withQR := ComposeDeckImage(tiles, solid(color.Black))
	assert.Equal(t, b.Dy()+Gap+qrSize, withQR.Bounds().Dy())
}

func TestComposeDeckImage_DrawsTiles(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	img := ComposeDeckImage([]image.Image{solid(red), nil}, nil)

	r, g, bl, _ := img.At(Margin+TileWidth/2, Margin+TileHeight/2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), bl)

	p := color.NRGBAModel.Convert(img.At(Margin+TileWidth+Gap+5, Margin+5)).(color.NRGBA)
	assert.Equal(t, placeholder, p)
}

func TestGenerateQRImage(t *testing.T) {
	img, err := GenerateQRImage("3xHV-P01-050-N", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

type stubFetcher map[string]image.Image

func (s stubFetcher) Fetch(_ context.Context, handle string) (image.Image, error) {
	if img, ok := s[handle]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

func TestRenderDeck_OneTilePerCopy(t *testing.T) {
	entries := []deck.Entry{
		{Card: cards.Card{ID: "HV-P01-050-N", Image: "a"}, Count: 8},
		{Card: cards.Card{ID: "HV-P01-001-R", Image: "missing"}, Count: 1},
	}

	out, err := RenderDeck(context.Background(), stubFetcher{"a": solid(color.Black)}, entries, nil)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, Margin*2+2*TileHeight+Gap+Gap+qrSize, img.Bounds().Dy())
}

func TestFetcher_LocalAndRemote(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(solid(color.White), filepath.Join(dir, "hv-p01-050-n.png")))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(color.Black)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := NewFetcher(dir, time.Millisecond)
	ctx := context.Background()

	img, err := f.Fetch(ctx, cards.ImageURLPrefix+"hv-p01-050-n.png")
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())

	img, err = f.Fetch(ctx, srv.URL+"/card.png")
	require.NoError(t, err)
	assert.Equal(t, 28, img.Bounds().Dy())

	_, err = f.Fetch(ctx, "")
	assert.Error(t, err)
	_, err = f.Fetch(ctx, "ftp://x")
	assert.Error(t, err)
}

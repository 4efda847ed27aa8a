package documents

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 100 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeDownsizesLargeImage(t *testing.T) {
	content := &Content{Bytes: pngImage(t, 3200, 2400), MimeType: "image/png"}

	out := Optimize(content)

	img, format, err := image.Decode(bytes.NewReader(out.Bytes))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, "image/jpeg", out.MimeType)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 1200, img.Bounds().Dy())
}

func TestOptimizeKeepsSmallImage(t *testing.T) {
	content := &Content{Bytes: pngImage(t, 800, 600), MimeType: "image/png"}

	out := Optimize(content)

	assert.Equal(t, content.Bytes, out.Bytes)
	assert.Equal(t, "image/png", out.MimeType)
}

func TestOptimizeUndecodableReturnsOriginal(t *testing.T) {
	content := &Content{Bytes: []byte("definitely not an image"), MimeType: "application/pdf"}

	out := Optimize(content)

	assert.Equal(t, content, out)
}

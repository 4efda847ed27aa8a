package documents

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxDimension = 1600
	jpegQuality  = 80
)

// Optimize downsizes and re-encodes an image asset to bound the AI payload.
// It is best-effort: anything that cannot be decoded, or that is already
// within bounds, comes back unchanged. Optimization failure must never fail
// the surrounding request.
func Optimize(content *Content) *Content {
	img, _, err := image.Decode(bytes.NewReader(content.Bytes))
	if err != nil {
		return content
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDimension && h <= maxDimension {
		return content
	}

	scale := float64(maxDimension) / float64(w)
	if h > w {
		scale = float64(maxDimension) / float64(h)
	}
	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return content
	}

	return &Content{Bytes: buf.Bytes(), MimeType: "image/jpeg"}
}

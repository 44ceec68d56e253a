// Package thumbnail renders bounded JPEG previews for uploaded images.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// MaxWidth and MaxHeight bound the generated thumbnail. The source
	// aspect ratio is preserved inside this box.
	MaxWidth  = 300
	MaxHeight = 400

	jpegQuality = 80
)

// IsImage reports whether the mime type is one the generator can decode.
func IsImage(mimeType string) bool {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif":
		return true
	default:
		return false
	}
}

// Generate decodes the source image and returns a JPEG thumbnail that fits
// inside MaxWidth x MaxHeight. Images already inside the box are re-encoded
// at their original dimensions rather than upscaled.
func Generate(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}

	targetW, targetH := fit(width, height)
	var out image.Image = src
	if targetW != width || targetH != height {
		dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(width, height int) (int, int) {
	if width <= MaxWidth && height <= MaxHeight {
		return width, height
	}
	scaleW := float64(MaxWidth) / float64(width)
	scaleH := float64(MaxHeight) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	targetW := int(float64(width) * scale)
	targetH := int(float64(height) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return targetW, targetH
}

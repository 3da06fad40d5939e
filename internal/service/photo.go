package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/tmvalente/drivelog/internal/domain"
	"golang.org/x/image/draw"
)

const (
	// maxPhotoDimension bounds the longest side of a stored photo.
	maxPhotoDimension = 1024
	// maxPhotoBytes is the target encoded size.
	maxPhotoBytes = 300 * 1024
	// startQuality and floorQuality bound the JPEG quality walk. The floor
	// is deliberate: at quality 10 an oversized result is accepted rather
	// than degrading the image further.
	startQuality = 85
	floorQuality = 10
	qualityStep  = 5
)

// NormalizePhoto converts an uploaded image into a size-bounded JPEG and
// derives its stored filename. Any decodable format is accepted; non-RGB
// images (palette, alpha) are flattened to RGB. Images are downscaled so
// neither dimension exceeds 1024 px but are never upscaled.
func NormalizePhoto(data []byte, filename string) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot decode image: %v", domain.ErrInvalidInput, err)
	}

	rgb := toRGB(src)
	rgb = downscale(rgb)

	var buf bytes.Buffer
	quality := startQuality
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	for buf.Len() > maxPhotoBytes && quality > floorQuality {
		quality -= qualityStep
		buf.Reset()
		if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("encode jpeg at quality %d: %w", quality, err)
		}
	}

	return buf.Bytes(), DerivePhotoName(filename), nil
}

// DerivePhotoName replaces the extension of the original filename with .jpg.
// A name without a dot keeps its full stem.
func DerivePhotoName(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[:i] + ".jpg"
	}
	return filename + ".jpg"
}

// toRGB redraws the image onto an RGB surface, discarding palette and alpha.
func toRGB(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}

// downscale shrinks the image to fit within maxPhotoDimension on both axes,
// preserving aspect ratio. Images already within bounds are returned as is.
func downscale(src *image.RGBA) *image.RGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w <= maxPhotoDimension && h <= maxPhotoDimension {
		return src
	}

	scaleW := float64(maxPhotoDimension) / float64(w)
	scaleH := float64(maxPhotoDimension) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

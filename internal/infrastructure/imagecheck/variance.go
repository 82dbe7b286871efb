package imagecheck

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/yourusername/stock-backoffice/internal/domain/entity"
)

// samplesPerAxis caps the luminance grid at 64x64 points
const samplesPerAxis = 64

// VarianceValidator rejects near-uniform images (blank, single color placeholders)
type VarianceValidator struct {
	MinStdDev float64
}

// Name check name
func (v VarianceValidator) Name() string {
	return "variance"
}

// Validate computes the luminance standard deviation over a sample grid
func (v VarianceValidator) Validate(ctx context.Context, product entity.Product, img *entity.ImageData) error {
	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return &entity.ImageRejectedError{Check: v.Name(), Reason: "undecodable image: " + err.Error()}
	}

	stddev := LuminanceStdDev(decoded)
	if stddev < v.MinStdDev {
		return &entity.ImageRejectedError{
			Check:  v.Name(),
			Reason: fmt.Sprintf("near-uniform image, luminance stddev %.2f < %.2f", stddev, v.MinStdDev),
		}
	}
	return nil
}

// LuminanceStdDev standard deviation of Rec.601 luminance on a 0-255 scale
func LuminanceStdDev(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	stepX := max(1, b.Dx()/samplesPerAxis)
	stepY := max(1, b.Dy()/samplesPerAxis)

	var sum, sumSq float64
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257
			sum += lum
			sumSq += lum * lum
			n++
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		return 0
	}
	return math.Sqrt(variance)
}

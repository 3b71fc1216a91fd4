package compliance

import (
	"image"
)

// bitmap wraps a decoded image with cheap 8-bit pixel access. The image
// is treated as immutable; the wrapper only reads it.
type bitmap struct {
	img    image.Image
	minX   int
	minY   int
	width  int
	height int
}

func newBitmap(img image.Image) *bitmap {
	bounds := img.Bounds()
	return &bitmap{
		img:    img,
		minX:   bounds.Min.X,
		minY:   bounds.Min.Y,
		width:  bounds.Dx(),
		height: bounds.Dy(),
	}
}

// rgbAt returns the 8-bit channels at (x, y) in zero-based coordinates.
func (b *bitmap) rgbAt(x, y int) (r, g, bl uint8) {
	r16, g16, b16, _ := b.img.At(b.minX+x, b.minY+y).RGBA()
	return uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8)
}

// lumaAt returns the Rec. 601 luma at (x, y).
func (b *bitmap) lumaAt(x, y int) float64 {
	r, g, bl := b.rgbAt(x, y)
	return luma(r, g, bl)
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// sampleLuma collects luma values over the given rectangle at the given
// stride. The rectangle is clamped to the image.
func (b *bitmap) sampleLuma(x0, y0, x1, y1, stride int) []float64 {
	if stride < 1 {
		stride = 1
	}
	x0, y0, x1, y1 = b.clamp(x0, y0, x1, y1)

	samples := make([]float64, 0, ((x1-x0)/stride+1)*((y1-y0)/stride+1))
	for y := y0; y < y1; y += stride {
		for x := x0; x < x1; x += stride {
			samples = append(samples, b.lumaAt(x, y))
		}
	}
	return samples
}

func (b *bitmap) clamp(x0, y0, x1, y1 int) (int, int, int, int) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > b.width {
		x1 = b.width
	}
	if y1 > b.height {
		y1 = b.height
	}
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return x0, y0, x1, y1
}

// meanVariance returns the mean and population variance of the samples.
// An empty sample set yields zeros rather than dividing by zero.
func meanVariance(samples []float64) (mean, variance float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	for _, v := range samples {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return mean, variance
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package face abstracts face detection behind a small interface so the
// compliance engine never depends on a concrete classifier.
package face

import (
	"context"
	"image"
)

// Box is an axis-aligned face bounding box in pixel coordinates.
type Box struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// AreaRatio returns the box area divided by the image area.
func (b Box) AreaRatio(imageWidth, imageHeight int) float64 {
	if imageWidth <= 0 || imageHeight <= 0 {
		return 0
	}
	return float64(b.Width*b.Height) / float64(imageWidth*imageHeight)
}

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() int {
	return b.X + b.Width/2
}

// CenterY returns the vertical center of the box.
func (b Box) CenterY() int {
	return b.Y + b.Height/2
}

// Detector finds faces in an image. Implementations must be safe for
// concurrent use.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Box, error)
}

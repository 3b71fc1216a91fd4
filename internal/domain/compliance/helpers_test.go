package compliance

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// fillImage creates a solid-colored RGBA image.
func fillImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// drawOval paints a centered filled ellipse with the given semi-axes.
func drawOval(img *image.RGBA, rx, ry int, c color.RGBA) {
	bounds := img.Bounds()
	cx := bounds.Dx() / 2
	cy := bounds.Dy() / 2
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

var (
	white    = color.RGBA{255, 255, 255, 255}
	skinTone = color.RGBA{190, 150, 130, 255}
)

// makePortrait builds a synthetic compliant portrait: white background
// with a centered skin-toned oval.
func makePortrait(width, height, rx, ry int) *image.RGBA {
	img := fillImage(width, height, white)
	drawOval(img, rx, ry, skinTone)
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func findIssue(result *Result, code string) *Issue {
	for i := range result.Issues {
		if result.Issues[i].Code == code {
			return &result.Issues[i]
		}
	}
	return nil
}

package compliance

import (
	"image"
	"image/color"
	"testing"
)

// texturedImage fills the frame with a deterministic high-frequency
// pattern that survives stride sampling.
func texturedImage(width, height int) *image.RGBA {
	img := fillImage(width, height, white)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x*1103515245 + y*12345 + x*y*31) % 256)
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestCheckSharpness_FlatImageIsBlurry(t *testing.T) {
	img := fillImage(600, 600, color.RGBA{150, 150, 150, 255})
	check, variance := checkSharpness(newBitmap(img), Default())

	if check.Valid {
		t.Fatalf("flat image should be flagged blurry, variance %f", variance)
	}
	if check.Issue == nil || check.Issue.Code != CodeLowSharpness {
		t.Errorf("expected %s, got %+v", CodeLowSharpness, check.Issue)
	}
	if check.Issue.Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning", check.Issue.Severity)
	}
}

func TestCheckSharpness_TexturedImagePasses(t *testing.T) {
	img := texturedImage(600, 600)
	check, variance := checkSharpness(newBitmap(img), Default())

	if !check.Valid {
		t.Errorf("textured image should pass sharpness, variance %f", variance)
	}
}

func TestCheckNoise_FlatImageIsClean(t *testing.T) {
	img := fillImage(600, 600, color.RGBA{200, 200, 200, 255})
	check, noise := checkNoise(newBitmap(img), Default())

	if !check.Valid {
		t.Errorf("flat image should pass noise check, noise %f", noise)
	}
	if noise != 0 {
		t.Errorf("flat image noise = %f, want 0", noise)
	}
}

func TestCheckNoise_GrainyImageFails(t *testing.T) {
	img := texturedImage(600, 600)
	check, noise := checkNoise(newBitmap(img), Default())

	if check.Valid {
		t.Fatalf("grainy image should fail noise check, noise %f", noise)
	}
	if check.Issue == nil || check.Issue.Code != CodeHighNoise {
		t.Errorf("expected %s, got %+v", CodeHighNoise, check.Issue)
	}
}

func TestNoiseEstimate_TinyImage(t *testing.T) {
	img := fillImage(8, 8, white)
	if noise := noiseEstimate(newBitmap(img)); noise != 0 {
		t.Errorf("tiny image noise = %f, want 0", noise)
	}
}

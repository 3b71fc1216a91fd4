package face

import (
	"context"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"photocheck-server-go/internal/platform/errors"
	"photocheck-server-go/internal/platform/logging"
)

// PigoConfig tunes the cascade classifier.
type PigoConfig struct {
	CascadePath string
	MinSize     int
	MaxSize     int
	// MinQuality drops detections below this classifier score.
	MinQuality float32
}

// PigoDetector runs the Pigo cascade classifier over the image.
type PigoDetector struct {
	classifier *pigo.Pigo
	config     PigoConfig
	logger     *logging.Logger
}

// NewPigoDetector loads the cascade file and builds a detector.
func NewPigoDetector(config PigoConfig, logger *logging.Logger) (*PigoDetector, error) {
	cascade, err := os.ReadFile(config.CascadePath)
	if err != nil {
		return nil, errors.Wrap(errors.KindDetector, "face.load_cascade", "failed to read cascade file", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, errors.Wrap(errors.KindDetector, "face.unpack_cascade", "failed to unpack cascade", err)
	}

	if config.MinSize <= 0 {
		config.MinSize = 60
	}
	if config.MaxSize <= 0 {
		config.MaxSize = 1200
	}
	if config.MinQuality <= 0 {
		config.MinQuality = 5.0
	}

	return &PigoDetector{
		classifier: classifier,
		config:     config,
		logger:     logger,
	}, nil
}

// Detect returns clustered face detections above the quality threshold.
func (d *PigoDetector) Detect(ctx context.Context, img image.Image) ([]Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols, rows := src.Bounds().Max.X, src.Bounds().Max.Y

	params := pigo.CascadeParams{
		MinSize:     d.config.MinSize,
		MaxSize:     d.config.MaxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.18)

	boxes := make([]Box, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.config.MinQuality {
			continue
		}
		confidence := float64(det.Q) / 100.0
		if confidence > 1 {
			confidence = 1
		}
		boxes = append(boxes, Box{
			X:          det.Col - det.Scale/2,
			Y:          det.Row - det.Scale/2,
			Width:      det.Scale,
			Height:     det.Scale,
			Confidence: confidence,
		})
	}

	d.logger.DebugTag("FACE", "cascade pass complete: raw=%d kept=%d", len(dets), len(boxes))
	return boxes, nil
}

package compliance

import (
	"bytes"
	"context"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"golang.org/x/sync/errgroup"

	"photocheck-server-go/internal/domain/face"
	"photocheck-server-go/internal/platform/logging"
)

// Check weights. They sum to 100; the final score is the weighted sum of
// per-check scores clamped to [0,100].
const (
	weightDimensions = 20
	weightFileSize   = 10
	weightFormat     = 10
	weightFace       = 25
	weightBackground = 15
	weightLighting   = 10
	weightShadows    = 5
	weightSharpness  = 5
)

// Heuristic face estimates below this confidence count as no face found.
const heuristicMinConfidence = 0.25

// Input carries everything one validation call needs.
type Input struct {
	// Bytes is the raw encoded image.
	Bytes []byte
	// FileSizeBytes is the on-disk size. Zero means len(Bytes).
	FileSizeBytes int64
	// Extension is the original filename extension, with or without dot.
	Extension string
	// Mode selects the threshold set: "standard" or "lenient".
	Mode string
}

// Validator scores photos against ID-photo requirements. It is
// stateless per call and safe for concurrent use.
type Validator struct {
	detector face.Detector
	logger   *logging.Logger
}

// NewValidator builds a validator. The detector is optional; when nil
// the heuristic region estimator is the only face path.
func NewValidator(detector face.Detector, logger *logging.Logger) *Validator {
	return &Validator{
		detector: detector,
		logger:   logger,
	}
}

// Validate runs the full check pipeline with the thresholds for the
// input's mode.
func (v *Validator) Validate(ctx context.Context, input Input) *Result {
	return v.ValidateWithThresholds(ctx, input, ForMode(input.Mode))
}

// ValidateWithThresholds runs the full check pipeline against an
// explicit threshold set. It never panics or returns an error: every
// failure becomes a typed issue in the result.
func (v *Validator) ValidateWithThresholds(ctx context.Context, input Input, t Thresholds) *Result {
	result := &Result{
		Issues:  []Issue{},
		Checks:  map[string]bool{},
		Metrics: map[string]float64{},
	}

	img, _, err := image.Decode(bytes.NewReader(input.Bytes))
	if err != nil {
		v.logger.WarnTag("ENGINE", "image decode failed: %v", err)
		result.Issues = append(result.Issues, Issue{
			Code:       CodeDecodeError,
			Message:    "image could not be decoded",
			Severity:   SeverityCritical,
			Suggestion: "upload a valid JPEG photo",
		})
		return result
	}

	bm := newBitmap(img)
	fileSize := input.FileSizeBytes
	if fileSize == 0 {
		fileSize = int64(len(input.Bytes))
	}

	record := func(name string, check CheckResult, weight float64) {
		result.Checks[name] = check.Valid
		result.Score += weight * check.Score
		if check.Issue != nil {
			result.Issues = append(result.Issues, *check.Issue)
		}
	}

	// Metadata checks first, cheapest to most expensive.
	record(CheckDimensions, checkDimensions(bm.width, bm.height, t), weightDimensions)
	record(CheckFileSize, checkFileSize(fileSize, t), weightFileSize)
	record(CheckFormat, checkFormat(input.Extension), weightFormat)
	result.Metrics["file_kb"] = float64(fileSize) / 1024.0

	// Face region, detector first with heuristic fallback.
	faceCheck, region := v.checkFace(ctx, bm, t, result)
	record(CheckFace, faceCheck, weightFace)
	result.Face = &region
	result.Metrics["face_ratio"] = region.AreaRatio
	result.Metrics["face_confidence"] = region.Confidence

	bgCheck, bgStats := checkBackground(bm, t)
	record(CheckBackground, bgCheck, weightBackground)
	result.Metrics["background_brightness"] = bgStats.Mean
	result.Metrics["background_variance"] = bgStats.Variance

	lightCheck, lightStats := checkLighting(bm, t)
	record(CheckLighting, lightCheck, weightLighting)
	result.Metrics["lighting_mean"] = lightStats.Mean
	result.Metrics["lighting_variance"] = lightStats.Variance

	shadowCheck, shadowStats := checkShadows(bm, t)
	record(CheckShadows, shadowCheck, weightShadows)
	result.Metrics["shadow_avg_gradient"] = shadowStats.AvgGradient
	result.Metrics["shadow_high_ratio"] = shadowStats.HighRatio

	// Sharpness and noise share no state and run in parallel.
	var sharpCheck, noiseCheck CheckResult
	var laplacian, noise float64
	var group errgroup.Group
	group.Go(func() error {
		sharpCheck, laplacian = checkSharpness(bm, t)
		return nil
	})
	group.Go(func() error {
		noiseCheck, noise = checkNoise(bm, t)
		return nil
	})
	_ = group.Wait()

	combined := CheckResult{
		Valid: sharpCheck.Valid && noiseCheck.Valid,
		Score: (sharpCheck.Score + noiseCheck.Score) / 2,
	}
	result.Checks[CheckSharpness] = combined.Valid
	result.Score += weightSharpness * combined.Score
	if sharpCheck.Issue != nil {
		result.Issues = append(result.Issues, *sharpCheck.Issue)
	}
	if noiseCheck.Issue != nil {
		result.Issues = append(result.Issues, *noiseCheck.Issue)
	}
	result.Metrics["laplacian_variance"] = laplacian
	result.Metrics["noise"] = noise

	if result.Score > 100 {
		result.Score = 100
	}
	if result.Score < 0 {
		result.Score = 0
	}

	// Validity is strict: any critical issue blocks, warnings never do.
	// The score stays advisory.
	result.Valid = true
	for _, issue := range result.Issues {
		if issue.Severity == SeverityCritical {
			result.Valid = false
			break
		}
	}

	v.logger.DebugTag("ENGINE", "validation complete: valid=%t score=%.1f issues=%d",
		result.Valid, result.Score, len(result.Issues))
	return result
}

// checkFace resolves a face region and scores it. The detector is tried
// first; detector failure or an empty detection falls back to the skin
// heuristic. More than one detected face is always a critical error.
func (v *Validator) checkFace(ctx context.Context, bm *bitmap, t Thresholds, result *Result) (CheckResult, FaceRegion) {
	if v.detector != nil {
		boxes, err := v.detector.Detect(ctx, bm.img)
		switch {
		case err != nil:
			v.logger.WarnTag("ENGINE", "face detector failed, using heuristic fallback: %v", err)
			result.Issues = append(result.Issues, Issue{
				Code:     CodeFaceDetectionError,
				Message:  "face detector unavailable, heuristic estimate used",
				Severity: SeverityInfo,
			})

		case len(boxes) > 1:
			region := regionFromBox(largestBox(boxes), bm)
			return CheckResult{
				Valid: false,
				Score: 0,
				Issue: &Issue{
					Code:       CodeMultipleFaces,
					Message:    "more than one face detected",
					Severity:   SeverityCritical,
					Suggestion: "the photo must show exactly one person",
					Details:    map[string]float64{"faces": float64(len(boxes))},
				},
			}, region

		case len(boxes) == 1:
			region := regionFromBox(boxes[0], bm)
			return scoreFaceRegion(region, t), region
		}
		// Zero faces falls through to the heuristic.
	}

	region := estimateFaceRegion(bm, t)
	if region.Confidence < heuristicMinConfidence {
		return CheckResult{
			Valid: false,
			Score: 0,
			Issue: &Issue{
				Code:       CodeNoFaceDetected,
				Message:    "no face could be found in the photo",
				Severity:   SeverityCritical,
				Suggestion: "make sure the face is centered and well lit",
			},
		}, region
	}
	return scoreFaceRegion(region, t), region
}

// scoreFaceRegion enforces the face ratio band and scores by closeness
// to the optimal ratio.
func scoreFaceRegion(region FaceRegion, t Thresholds) CheckResult {
	closeness := clamp01(1 - absFloat(region.AreaRatio-t.FaceOptimalRatio)/t.FaceOptimalRatio)

	if region.AreaRatio < t.FaceMinRatio {
		return CheckResult{
			Valid: false,
			Score: closeness * 0.5,
			Issue: &Issue{
				Code:       CodeFaceTooSmall,
				Message:    "face is too small in the frame",
				Severity:   SeverityCritical,
				Suggestion: "move closer to the camera",
				Details: map[string]float64{
					"face_ratio": region.AreaRatio,
					"min_ratio":  t.FaceMinRatio,
				},
			},
		}
	}
	if region.AreaRatio > t.FaceMaxRatio {
		return CheckResult{
			Valid: false,
			Score: closeness * 0.5,
			Issue: &Issue{
				Code:       CodeFaceTooLarge,
				Message:    "face fills too much of the frame",
				Severity:   SeverityCritical,
				Suggestion: "move farther from the camera",
				Details: map[string]float64{
					"face_ratio": region.AreaRatio,
					"max_ratio":  t.FaceMaxRatio,
				},
			},
		}
	}
	return CheckResult{Valid: true, Score: closeness}
}

func regionFromBox(box face.Box, bm *bitmap) FaceRegion {
	return FaceRegion{
		X:          box.X,
		Y:          box.Y,
		Width:      box.Width,
		Height:     box.Height,
		AreaRatio:  box.AreaRatio(bm.width, bm.height),
		Confidence: box.Confidence,
	}
}

func largestBox(boxes []face.Box) face.Box {
	best := boxes[0]
	for _, box := range boxes[1:] {
		if box.Width*box.Height > best.Width*best.Height {
			best = box
		}
	}
	return best
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

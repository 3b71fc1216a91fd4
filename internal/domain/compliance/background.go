package compliance

import "fmt"

// backgroundStats summarizes the border band of the image.
type backgroundStats struct {
	Mean     float64
	Variance float64
	Samples  int
}

// sampleBackground collects luma along a band on all four image edges.
func sampleBackground(bm *bitmap, t Thresholds) backgroundStats {
	band := int(float64(bm.width) * t.BackgroundBandRatio)
	if band < 1 {
		band = 1
	}
	stride := t.SampleStride
	if stride < 1 {
		stride = 1
	}

	samples := bm.sampleLuma(0, 0, bm.width, band, stride)
	samples = append(samples, bm.sampleLuma(0, bm.height-band, bm.width, bm.height, stride)...)
	samples = append(samples, bm.sampleLuma(0, band, band, bm.height-band, stride)...)
	samples = append(samples, bm.sampleLuma(bm.width-band, band, bm.width, bm.height-band, stride)...)

	mean, variance := meanVariance(samples)
	return backgroundStats{Mean: mean, Variance: variance, Samples: len(samples)}
}

// checkBackground requires a light, plain border: mean above the light
// threshold and variance below the patterned threshold. One failing
// condition still earns partial credit.
func checkBackground(bm *bitmap, t Thresholds) (CheckResult, backgroundStats) {
	stats := sampleBackground(bm, t)

	lightEnough := stats.Mean >= t.BackgroundMinBrightness
	plainEnough := stats.Variance <= t.BackgroundMaxVariance

	switch {
	case lightEnough && plainEnough:
		return CheckResult{Valid: true, Score: 1}, stats

	case lightEnough && !plainEnough:
		return CheckResult{
			Valid: false,
			Score: 0.5,
			Issue: &Issue{
				Code:       CodeComplexBackground,
				Message:    "background is too complex or patterned",
				Severity:   SeverityCritical,
				Suggestion: "retake the photo against a plain, uniform background",
				Details: map[string]float64{
					"variance":     stats.Variance,
					"max_variance": t.BackgroundMaxVariance,
				},
			},
		}, stats

	case !lightEnough && plainEnough:
		return CheckResult{
			Valid: false,
			Score: 0.5,
			Issue: &Issue{
				Code:       CodeComplexBackground,
				Message:    fmt.Sprintf("background is too dark (brightness %.0f)", stats.Mean),
				Severity:   SeverityCritical,
				Suggestion: "use a plain white or light-colored background",
				Details: map[string]float64{
					"brightness":     stats.Mean,
					"min_brightness": t.BackgroundMinBrightness,
				},
			},
		}, stats

	default:
		return CheckResult{
			Valid: false,
			Score: 0,
			Issue: &Issue{
				Code:       CodeComplexBackground,
				Message:    "background is dark and patterned",
				Severity:   SeverityCritical,
				Suggestion: "retake the photo against a plain white background",
				Details: map[string]float64{
					"brightness": stats.Mean,
					"variance":   stats.Variance,
				},
			},
		}, stats
	}
}

package compliance

import (
	"fmt"
	"math"
)

// lightingStats summarizes the sampled luma grid over the whole image.
type lightingStats struct {
	Mean     float64
	Variance float64
	StdDev   float64
}

func sampleLighting(bm *bitmap, t Thresholds) lightingStats {
	samples := bm.sampleLuma(0, 0, bm.width, bm.height, t.SampleStride)
	mean, variance := meanVariance(samples)
	return lightingStats{Mean: mean, Variance: variance, StdDev: math.Sqrt(variance)}
}

// checkLighting enforces the acceptable brightness band and the
// unevenness ceiling. Out-of-band brightness takes precedence over
// unevenness; only the first breach is reported.
func checkLighting(bm *bitmap, t Thresholds) (CheckResult, lightingStats) {
	stats := sampleLighting(bm, t)

	if stats.Mean < t.BrightnessMin {
		return CheckResult{
			Valid: false,
			Score: clamp01(stats.Mean / t.BrightnessMin),
			Issue: &Issue{
				Code:       CodeImageTooDark,
				Message:    fmt.Sprintf("photo is too dark (brightness %.0f)", stats.Mean),
				Severity:   SeverityCritical,
				Suggestion: "retake the photo in better lighting",
				Details: map[string]float64{
					"brightness": stats.Mean,
					"min":        t.BrightnessMin,
				},
			},
		}, stats
	}

	if stats.Mean > t.BrightnessMax {
		overshoot := (stats.Mean - t.BrightnessMax) / (255 - t.BrightnessMax)
		return CheckResult{
			Valid: false,
			Score: clamp01(1 - overshoot),
			Issue: &Issue{
				Code:       CodeImageTooBright,
				Message:    fmt.Sprintf("photo is overexposed (brightness %.0f)", stats.Mean),
				Severity:   SeverityCritical,
				Suggestion: "avoid direct light sources and retake the photo",
				Details: map[string]float64{
					"brightness": stats.Mean,
					"max":        t.BrightnessMax,
				},
			},
		}, stats
	}

	if stats.Variance > t.LightingMaxVar {
		return CheckResult{
			Valid: false,
			Score: 0.5,
			Issue: &Issue{
				Code:       CodeUnevenLighting,
				Message:    "lighting is uneven across the photo",
				Severity:   SeverityWarning,
				Suggestion: "use diffuse, frontal lighting",
				Details: map[string]float64{
					"variance":     stats.Variance,
					"max_variance": t.LightingMaxVar,
				},
			},
		}, stats
	}

	if stats.StdDev < t.ContrastMinStdDev {
		return CheckResult{
			Valid: false,
			Score: 0.7,
			Issue: &Issue{
				Code:       CodePoorContrast,
				Message:    "photo has very low contrast",
				Severity:   SeverityWarning,
				Suggestion: "check camera exposure settings",
				Details: map[string]float64{
					"std_dev": stats.StdDev,
					"min":     t.ContrastMinStdDev,
				},
			},
		}, stats
	}

	return CheckResult{Valid: true, Score: 1}, stats
}

// shadowStats summarizes local gradients over the center region.
type shadowStats struct {
	AvgGradient float64
	HighRatio   float64
}

// sampleShadows measures 4-neighbor luma gradients over the center half
// of the image, where harsh shadows on the face show up.
func sampleShadows(bm *bitmap, t Thresholds) shadowStats {
	stride := t.SampleStride
	if stride < 1 {
		stride = 1
	}
	x0 := bm.width / 4
	y0 := bm.height / 4
	x1 := bm.width - x0
	y1 := bm.height - y0

	var total float64
	var high, count int
	for y := y0; y < y1-stride; y += stride {
		for x := x0; x < x1-stride; x += stride {
			center := bm.lumaAt(x, y)
			gx := math.Abs(center - bm.lumaAt(x+stride, y))
			gy := math.Abs(center - bm.lumaAt(x, y+stride))
			grad := math.Max(gx, gy)

			total += grad
			if grad > t.ShadowEdgeDelta {
				high++
			}
			count++
		}
	}
	if count == 0 {
		return shadowStats{}
	}
	return shadowStats{
		AvgGradient: total / float64(count),
		HighRatio:   float64(high) / float64(count),
	}
}

// checkShadows flags harsh shadows when either the average gradient or
// the high-gradient fraction exceeds its threshold.
func checkShadows(bm *bitmap, t Thresholds) (CheckResult, shadowStats) {
	stats := sampleShadows(bm, t)

	if stats.AvgGradient > t.ShadowMaxAvgGrad || stats.HighRatio > t.ShadowMaxHighRatio {
		return CheckResult{
			Valid: false,
			Score: 0.3,
			Issue: &Issue{
				Code:       CodeHarshShadows,
				Message:    "harsh shadows detected on the photo",
				Severity:   SeverityWarning,
				Suggestion: "use soft, even lighting from the front",
				Details: map[string]float64{
					"avg_gradient": stats.AvgGradient,
					"high_ratio":   stats.HighRatio,
				},
			},
		}, stats
	}
	return CheckResult{Valid: true, Score: 1}, stats
}

package compliance

// laplacianVariance computes the variance of the discrete 4-neighbor
// Laplacian over the sampled center region. Low variance means a smooth,
// blurry image.
func laplacianVariance(bm *bitmap, t Thresholds) float64 {
	stride := t.SampleStride
	if stride < 1 {
		stride = 1
	}
	x0 := bm.width / 4
	y0 := bm.height / 4
	x1 := bm.width - x0
	y1 := bm.height - y0

	values := make([]float64, 0, ((x1-x0)/stride+1)*((y1-y0)/stride+1))
	for y := y0 + stride; y < y1-stride; y += stride {
		for x := x0 + stride; x < x1-stride; x += stride {
			center := bm.lumaAt(x, y)
			lap := bm.lumaAt(x-stride, y) + bm.lumaAt(x+stride, y) +
				bm.lumaAt(x, y-stride) + bm.lumaAt(x, y+stride) - 4*center
			values = append(values, lap)
		}
	}

	_, variance := meanVariance(values)
	return variance
}

// Noise patch layout. A fixed grid keeps repeated runs byte-identical,
// unlike random patch placement.
const (
	noisePatchCount = 20
	noisePatchSize  = 10
	noisePatchCols  = 5
)

// noiseEstimate averages the luma variance of small patches laid out on
// a fixed grid across the image interior.
func noiseEstimate(bm *bitmap) float64 {
	if bm.width < noisePatchSize*2 || bm.height < noisePatchSize*2 {
		return 0
	}

	rows := noisePatchCount / noisePatchCols
	cellW := bm.width / noisePatchCols
	cellH := bm.height / rows

	var total float64
	var count int
	for row := 0; row < rows; row++ {
		for col := 0; col < noisePatchCols; col++ {
			x0 := col*cellW + (cellW-noisePatchSize)/2
			y0 := row*cellH + (cellH-noisePatchSize)/2

			samples := bm.sampleLuma(x0, y0, x0+noisePatchSize, y0+noisePatchSize, 1)
			if len(samples) == 0 {
				continue
			}
			_, variance := meanVariance(samples)
			total += variance
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// checkSharpness flags a blurry center region.
func checkSharpness(bm *bitmap, t Thresholds) (CheckResult, float64) {
	variance := laplacianVariance(bm, t)
	if variance < t.SharpnessMin {
		return CheckResult{
			Valid: false,
			Score: clamp01(variance / t.SharpnessMin),
			Issue: &Issue{
				Code:       CodeLowSharpness,
				Message:    "photo appears blurry",
				Severity:   SeverityWarning,
				Suggestion: "hold the camera steady and ensure the face is in focus",
				Details: map[string]float64{
					"laplacian_variance": variance,
					"min":                t.SharpnessMin,
				},
			},
		}, variance
	}
	return CheckResult{Valid: true, Score: 1}, variance
}

// checkNoise flags grainy images.
func checkNoise(bm *bitmap, t Thresholds) (CheckResult, float64) {
	noise := noiseEstimate(bm)
	if noise > t.NoiseMax {
		return CheckResult{
			Valid: false,
			Score: clamp01(t.NoiseMax / noise),
			Issue: &Issue{
				Code:       CodeHighNoise,
				Message:    "photo is noisy or grainy",
				Severity:   SeverityWarning,
				Suggestion: "retake the photo in better lighting with a lower ISO",
				Details: map[string]float64{
					"noise": noise,
					"max":   t.NoiseMax,
				},
			},
		}, noise
	}
	return CheckResult{Valid: true, Score: 1}, noise
}

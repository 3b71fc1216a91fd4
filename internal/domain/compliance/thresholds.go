package compliance

// Thresholds collects every tunable constant used by the checks. Modes
// are configuration over this one structure, never separate code paths.
type Thresholds struct {
	// Dimension and file-size checks.
	TargetWidth  int
	TargetHeight int
	MinFileKB    int
	MaxFileKB    int

	// Pixel sampling stride shared by the analyzers.
	SampleStride int

	// Background band along the image edges.
	BackgroundBandRatio     float64
	BackgroundMinBrightness float64
	BackgroundMaxVariance   float64

	// Global lighting over the sampled grid.
	BrightnessMin     float64
	BrightnessMax     float64
	LightingMaxVar    float64
	ContrastMinStdDev float64

	// Shadow gradients over the center region.
	ShadowEdgeDelta    float64
	ShadowMaxAvgGrad   float64
	ShadowMaxHighRatio float64

	// Laplacian sharpness and patch noise.
	SharpnessMin float64
	NoiseMax     float64

	// Face region bounds. Ratios are face area over image area.
	FaceMinRatio     float64
	FaceMaxRatio     float64
	FaceOptimalRatio float64
}

// Default returns the standard-mode thresholds.
func Default() Thresholds {
	return Thresholds{
		TargetWidth:  600,
		TargetHeight: 600,
		MinFileKB:    20,
		MaxFileKB:    500,

		SampleStride: 4,

		BackgroundBandRatio:     0.08,
		BackgroundMinBrightness: 200,
		BackgroundMaxVariance:   800,

		BrightnessMin:     80,
		BrightnessMax:     220,
		LightingMaxVar:    3200,
		ContrastMinStdDev: 12,

		ShadowEdgeDelta:    60,
		ShadowMaxAvgGrad:   28,
		ShadowMaxHighRatio: 0.14,

		SharpnessMin: 100,
		NoiseMax:     10,

		FaceMinRatio:     0.15,
		FaceMaxRatio:     0.80,
		FaceOptimalRatio: 0.60,
	}
}

// Lenient relaxes the standard thresholds for pre-capture guidance,
// where the goal is coaching the user rather than final acceptance.
func Lenient() Thresholds {
	t := Default()
	t.BackgroundMinBrightness = 180
	t.BackgroundMaxVariance = 1000
	t.BrightnessMin = 60
	t.BrightnessMax = 235
	t.LightingMaxVar = 4000
	t.ShadowMaxAvgGrad = 36
	t.ShadowMaxHighRatio = 0.20
	t.SharpnessMin = 60
	t.NoiseMax = 16
	t.FaceMinRatio = 0.10
	t.FaceMaxRatio = 0.85
	return t
}

// ForMode maps a mode name to its thresholds. Unknown modes get the
// standard set.
func ForMode(mode string) Thresholds {
	if mode == "lenient" {
		return Lenient()
	}
	return Default()
}

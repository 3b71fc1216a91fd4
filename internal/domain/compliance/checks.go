package compliance

import (
	"fmt"
	"strings"
)

// checkDimensions is a binary exact-match test against the target size.
// Partial credit for near misses would silently accept non-compliant
// photos, so any mismatch scores zero.
func checkDimensions(width, height int, t Thresholds) CheckResult {
	if width == t.TargetWidth && height == t.TargetHeight {
		return CheckResult{Valid: true, Score: 1}
	}
	return CheckResult{
		Valid: false,
		Score: 0,
		Issue: &Issue{
			Code: CodeInvalidDimensions,
			Message: fmt.Sprintf("photo must be exactly %dx%d pixels, got %dx%d",
				t.TargetWidth, t.TargetHeight, width, height),
			Severity:   SeverityCritical,
			Suggestion: fmt.Sprintf("crop or resize the photo to %dx%d pixels", t.TargetWidth, t.TargetHeight),
			Details: map[string]float64{
				"width":  float64(width),
				"height": float64(height),
			},
		},
	}
}

// checkFileSize enforces the [minKB, maxKB] band with inclusive bounds.
// Oversized files are rejected outright; undersized files are flagged as
// likely over-compressed but do not block validity.
func checkFileSize(sizeBytes int64, t Thresholds) CheckResult {
	sizeKB := float64(sizeBytes) / 1024.0

	if sizeKB > float64(t.MaxFileKB) {
		return CheckResult{
			Valid: false,
			Score: 0,
			Issue: &Issue{
				Code:       CodeFileTooLarge,
				Message:    fmt.Sprintf("file is %.0f KB, maximum is %d KB", sizeKB, t.MaxFileKB),
				Severity:   SeverityCritical,
				Suggestion: "export the photo with stronger JPEG compression",
				Details: map[string]float64{
					"size_kb": sizeKB,
					"max_kb":  float64(t.MaxFileKB),
				},
			},
		}
	}

	if sizeKB < float64(t.MinFileKB) {
		return CheckResult{
			Valid: false,
			Score: 0.5,
			Issue: &Issue{
				Code:       CodeFileTooSmall,
				Message:    fmt.Sprintf("file is %.0f KB, minimum is %d KB", sizeKB, t.MinFileKB),
				Severity:   SeverityWarning,
				Suggestion: "the photo may be over-compressed, export at higher quality",
				Details: map[string]float64{
					"size_kb": sizeKB,
					"min_kb":  float64(t.MinFileKB),
				},
			},
		}
	}

	return CheckResult{Valid: true, Score: 1}
}

// checkFormat accepts only JPEG, case-insensitively. Metadata-only, so
// it runs before any pixel analysis.
func checkFormat(extension string) CheckResult {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ext == "jpg" || ext == "jpeg" {
		return CheckResult{Valid: true, Score: 1}
	}
	return CheckResult{
		Valid: false,
		Score: 0,
		Issue: &Issue{
			Code:       CodeInvalidFormat,
			Message:    fmt.Sprintf("format %q is not accepted, only JPEG is allowed", extension),
			Severity:   SeverityCritical,
			Suggestion: "save the photo as a .jpg file",
		},
	}
}

// Package compliance scores photos against fixed ID-photo requirements.
// All analysis is read-only over one decoded image and deterministic for
// byte-identical input.
package compliance

// Severity classifies how an issue affects validity. Only critical
// issues block a photo.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue codes. Stable identifiers, safe to persist and match on.
const (
	CodeDecodeError        = "DECODE_ERROR"
	CodeInvalidDimensions  = "INVALID_DIMENSIONS"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeFileTooSmall       = "FILE_TOO_SMALL"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeNoFaceDetected     = "NO_FACE_DETECTED"
	CodeMultipleFaces      = "MULTIPLE_FACES"
	CodeFaceTooSmall       = "FACE_TOO_SMALL"
	CodeFaceTooLarge       = "FACE_TOO_LARGE"
	CodeFaceDetectionError = "FACE_DETECTION_ERROR"
	CodeComplexBackground  = "COMPLEX_BACKGROUND"
	CodePoorContrast       = "POOR_CONTRAST"
	CodeImageTooDark       = "IMAGE_TOO_DARK"
	CodeImageTooBright     = "IMAGE_TOO_BRIGHT"
	CodeUnevenLighting     = "UNEVEN_LIGHTING"
	CodeHarshShadows       = "HARSH_SHADOWS"
	CodeLowSharpness       = "LOW_SHARPNESS"
	CodeHighNoise          = "HIGH_NOISE"
)

// Issue is one typed finding from a check.
type Issue struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Severity   Severity           `json:"severity"`
	Suggestion string             `json:"suggestion,omitempty"`
	Details    map[string]float64 `json:"details,omitempty"`
}

// FaceRegion is the estimated or detected face bounding box plus derived
// ratios consumed by the aggregator.
type FaceRegion struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	AreaRatio  float64 `json:"area_ratio"`
	Confidence float64 `json:"confidence"`
}

// CheckResult is the flat outcome of a single check. Score is in [0,1].
type CheckResult struct {
	Valid bool
	Score float64
	Issue *Issue
}

// Result is the aggregate outcome of one validation call. Immutable once
// returned, fully serializable.
type Result struct {
	Valid   bool               `json:"valid"`
	Score   float64            `json:"score"`
	Issues  []Issue            `json:"issues"`
	Checks  map[string]bool    `json:"checks"`
	Metrics map[string]float64 `json:"metrics"`
	Face    *FaceRegion        `json:"face,omitempty"`
}

// Check names used as keys in Result.Checks and Result.Metrics.
const (
	CheckDimensions = "dimensions"
	CheckFileSize   = "file_size"
	CheckFormat     = "format"
	CheckFace       = "face"
	CheckBackground = "background"
	CheckLighting   = "lighting"
	CheckShadows    = "shadows"
	CheckSharpness  = "sharpness"
)

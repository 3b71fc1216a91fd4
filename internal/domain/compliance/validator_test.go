package compliance

import (
	"context"
	"fmt"
	"image"
	"reflect"
	"testing"

	"photocheck-server-go/internal/domain/face"
	platformtesting "photocheck-server-go/internal/platform/testing"
)

// stubDetector returns canned boxes or a canned error.
type stubDetector struct {
	boxes []face.Box
	err   error
}

func (d *stubDetector) Detect(ctx context.Context, img image.Image) ([]face.Box, error) {
	return d.boxes, d.err
}

func compliantPhoto(t *testing.T) Input {
	t.Helper()
	data := encodeJPEG(t, makePortrait(600, 600, 232, 232))
	return Input{
		Bytes:         data,
		FileSizeBytes: 100 * 1024,
		Extension:     "jpg",
		Mode:          "standard",
	}
}

func TestValidate_CompliantPhoto(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	validator := NewValidator(nil, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	if !result.Valid {
		t.Fatalf("compliant photo should be valid, issues: %+v", result.Issues)
	}
	if result.Score < 90 {
		t.Errorf("score = %f, want >= 90 (metrics %+v)", result.Score, result.Metrics)
	}
	for _, issue := range result.Issues {
		if issue.Severity == SeverityCritical {
			t.Errorf("unexpected critical issue: %+v", issue)
		}
	}
	if result.Face == nil {
		t.Fatal("result must always carry a face region")
	}
}

func TestValidate_Deterministic(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	validator := NewValidator(nil, logger)
	input := compliantPhoto(t)

	first := validator.Validate(context.Background(), input)
	second := validator.Validate(context.Background(), input)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("byte-identical input produced different results:\n%+v\n%+v", first, second)
	}
}

func TestValidate_WrongDimensions(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	validator := NewValidator(nil, logger)

	data := encodeJPEG(t, makePortrait(400, 400, 155, 155))
	result := validator.Validate(context.Background(), Input{
		Bytes:         data,
		FileSizeBytes: 100 * 1024,
		Extension:     "jpg",
	})

	if result.Valid {
		t.Fatal("wrong dimensions must invalidate the photo")
	}
	if findIssue(result, CodeInvalidDimensions) == nil {
		t.Errorf("expected %s, issues: %+v", CodeInvalidDimensions, result.Issues)
	}
}

func TestValidate_UndecodableBytes(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	validator := NewValidator(nil, logger)

	result := validator.Validate(context.Background(), Input{
		Bytes:     []byte("definitely not an image"),
		Extension: "jpg",
	})

	if result.Valid {
		t.Fatal("undecodable input must be invalid")
	}
	if result.Score != 0 {
		t.Errorf("score = %f, want 0", result.Score)
	}
	if len(result.Issues) != 1 || result.Issues[0].Code != CodeDecodeError {
		t.Errorf("expected a single %s issue, got %+v", CodeDecodeError, result.Issues)
	}
	if len(result.Checks) != 0 {
		t.Errorf("no checks should run on undecodable input, got %+v", result.Checks)
	}
}

func TestValidate_WrongExtension(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	validator := NewValidator(nil, logger)

	input := compliantPhoto(t)
	input.Extension = "png"
	result := validator.Validate(context.Background(), input)

	if result.Valid {
		t.Fatal("non-JPEG extension must invalidate the photo")
	}
	if findIssue(result, CodeInvalidFormat) == nil {
		t.Errorf("expected %s, issues: %+v", CodeInvalidFormat, result.Issues)
	}
	// The rest of the pipeline still runs.
	if len(result.Checks) < 5 {
		t.Errorf("expected remaining checks to run, got %+v", result.Checks)
	}
}

func TestValidate_MultipleFaces(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{boxes: []face.Box{
		{X: 50, Y: 100, Width: 200, Height: 200, Confidence: 0.9},
		{X: 350, Y: 100, Width: 200, Height: 200, Confidence: 0.85},
	}}
	validator := NewValidator(detector, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	if result.Valid {
		t.Fatal("two detected faces must invalidate the photo")
	}
	issue := findIssue(result, CodeMultipleFaces)
	if issue == nil {
		t.Fatalf("expected %s, issues: %+v", CodeMultipleFaces, result.Issues)
	}
	if issue.Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", issue.Severity)
	}
}

func TestValidate_DetectorFailureFallsBack(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{err: fmt.Errorf("cascade not loaded")}
	validator := NewValidator(detector, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	// The failure is recorded as info and the heuristic path still
	// produces a confident region from the synthetic portrait.
	issue := findIssue(result, CodeFaceDetectionError)
	if issue == nil {
		t.Fatalf("expected %s, issues: %+v", CodeFaceDetectionError, result.Issues)
	}
	if issue.Severity != SeverityInfo {
		t.Errorf("severity = %s, want info", issue.Severity)
	}
	if !result.Valid {
		t.Errorf("detector failure alone must not invalidate, issues: %+v", result.Issues)
	}
	if !result.Checks[CheckFace] {
		t.Errorf("heuristic fallback should validate the face, checks: %+v", result.Checks)
	}
}

func TestValidate_DetectorZeroFacesFallsBack(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{boxes: nil}
	validator := NewValidator(detector, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	if !result.Checks[CheckFace] {
		t.Errorf("zero detections should fall back to the heuristic, checks: %+v", result.Checks)
	}
	if findIssue(result, CodeFaceDetectionError) != nil {
		t.Error("an empty detection is not a detector error")
	}
}

func TestValidate_SingleDetectedFace(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{boxes: []face.Box{
		{X: 68, Y: 68, Width: 464, Height: 464, Confidence: 0.95},
	}}
	validator := NewValidator(detector, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	if !result.Valid {
		t.Fatalf("single well-sized face should be valid, issues: %+v", result.Issues)
	}
	if result.Face.Confidence != 0.95 {
		t.Errorf("face confidence = %f, want the detector's 0.95", result.Face.Confidence)
	}
}

func TestValidate_FaceTooSmall(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{boxes: []face.Box{
		{X: 270, Y: 270, Width: 60, Height: 60, Confidence: 0.9},
	}}
	validator := NewValidator(detector, logger)

	result := validator.Validate(context.Background(), compliantPhoto(t))

	if result.Valid {
		t.Fatal("tiny face must invalidate the photo")
	}
	if findIssue(result, CodeFaceTooSmall) == nil {
		t.Errorf("expected %s, issues: %+v", CodeFaceTooSmall, result.Issues)
	}
}

func TestValidate_LenientModeRelaxesThresholds(t *testing.T) {
	logger := platformtesting.SetupTestLogger(t)
	detector := &stubDetector{boxes: []face.Box{
		// Ratio 0.12: below the standard minimum, above the lenient one.
		{X: 196, Y: 196, Width: 208, Height: 208, Confidence: 0.9},
	}}
	validator := NewValidator(detector, logger)

	input := compliantPhoto(t)
	input.Mode = "standard"
	strict := validator.Validate(context.Background(), input)
	if findIssue(strict, CodeFaceTooSmall) == nil {
		t.Errorf("standard mode should flag the small face, issues: %+v", strict.Issues)
	}

	input.Mode = "lenient"
	relaxed := validator.Validate(context.Background(), input)
	if findIssue(relaxed, CodeFaceTooSmall) != nil {
		t.Errorf("lenient mode should accept the face, issues: %+v", relaxed.Issues)
	}
}

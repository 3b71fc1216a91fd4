package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"photocheck-server-go/internal/domain/cache"
	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/domain/report"
	platformtesting "photocheck-server-go/internal/platform/testing"
	httptransport "photocheck-server-go/internal/transport/http"
)

type memRepo struct {
	saved []*report.Report
}

func (r *memRepo) Save(_ context.Context, rep *report.Report) error {
	r.saved = append(r.saved, rep)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*report.Report, error) {
	for _, rep := range r.saved {
		if rep.ID == id {
			return rep, nil
		}
	}
	return nil, nil
}

func (r *memRepo) List(_ context.Context, _ report.ListQuery) ([]*report.Report, error) {
	return r.saved, nil
}

func (r *memRepo) Count(_ context.Context, _ string) (int64, error) {
	return int64(len(r.saved)), nil
}

func portraitJPEG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	skin := color.RGBA{190, 150, 130, 255}
	cx, cy := size/2, size/2
	r := int(float64(size) * 0.387)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, skin)
			} else {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func setupService(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := platformtesting.SetupTestConfig(t)
	cfg.Compliance.MinFileKB = 1
	logger := platformtesting.SetupTestLogger(t)

	repo := &memRepo{}
	reports := report.NewService(repo, logger)
	resultCache := cache.NewMemory(cache.Config{})
	t.Cleanup(func() { _ = resultCache.Close(context.Background()) })

	service, err := NewService(cfg, logger, compliance.NewValidator(nil, logger), reports, resultCache)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}

	engine := gin.New()
	api := engine.Group("/api")
	if err := service.Register(context.Background(), api); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return engine, repo
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) httptransport.APIResponse {
	t.Helper()
	var envelope httptransport.APIResponse
	if err := json.Unmarshal(body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestHandleGet_Status(t *testing.T) {
	engine, _ := setupService(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/photo", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec.Body)
	if !envelope.Success {
		t.Errorf("expected success envelope, got %+v", envelope)
	}
}

func TestHandlePost_Multipart(t *testing.T) {
	engine, repo := setupService(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "me.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(portraitJPEG(t, 600)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photo", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body)
	if !envelope.Success {
		t.Fatalf("expected success, got %+v", envelope)
	}

	data, _ := json.Marshal(envelope.Data)
	var resp struct {
		ReportID string             `json:"report_id"`
		Cached   bool               `json:"cached"`
		Result   *compliance.Result `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Result == nil {
		t.Fatal("expected a validation result")
	}
	if !resp.Result.Valid {
		t.Errorf("compliant portrait should validate, issues: %+v", resp.Result.Issues)
	}
	if resp.ReportID == "" {
		t.Error("expected a persisted report ID")
	}
	if len(repo.saved) != 1 {
		t.Errorf("expected 1 stored report, got %d", len(repo.saved))
	}
}

func TestHandlePost_CacheHit(t *testing.T) {
	engine, repo := setupService(t)
	photo := portraitJPEG(t, 600)

	post := func() httptransport.APIResponse {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, _ := writer.CreateFormFile("photo", "me.jpg")
		part.Write(photo)
		writer.Close()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/photo", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		engine.ServeHTTP(rec, req)
		return decodeEnvelope(t, rec.Body)
	}

	post()
	second := post()

	data, _ := json.Marshal(second.Data)
	var resp struct {
		Cached bool `json:"cached"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !resp.Cached {
		t.Error("second identical upload should hit the cache")
	}
	if len(repo.saved) != 1 {
		t.Errorf("cache hits must not create new reports, got %d", len(repo.saved))
	}
}

func TestHandlePost_Base64JSON(t *testing.T) {
	engine, _ := setupService(t)

	payload, _ := json.Marshal(map[string]string{
		"image":    base64.StdEncoding.EncodeToString(portraitJPEG(t, 600)),
		"filename": "me.jpg",
		"mode":     "lenient",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photo", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec.Body)
	if !envelope.Success {
		t.Errorf("expected success, got %+v", envelope)
	}
}

func TestHandlePost_WrongDimensionsRejected(t *testing.T) {
	engine, _ := setupService(t)

	payload, _ := json.Marshal(map[string]string{
		"image":    base64.StdEncoding.EncodeToString(portraitJPEG(t, 400)),
		"filename": "me.jpg",
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photo", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	envelope := decodeEnvelope(t, rec.Body)
	data, _ := json.Marshal(envelope.Data)
	var resp struct {
		Result *compliance.Result `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if resp.Result == nil || resp.Result.Valid {
		t.Errorf("400x400 photo must be invalid, got %+v", resp.Result)
	}
}

func TestHandlePost_MissingPayload(t *testing.T) {
	engine, _ := setupService(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photo", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// Package photo exposes the compliance engine over HTTP.
package photo

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"photocheck-server-go/internal/domain/cache"
	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/domain/report"
	"photocheck-server-go/internal/platform/config"
	"photocheck-server-go/internal/platform/errors"
	"photocheck-server-go/internal/platform/logging"
	httptransport "photocheck-server-go/internal/transport/http"
)

// MaxFileSize caps uploads at 5MB, well above any compliant photo.
const MaxFileSize = 5 * 1024 * 1024

// Service is the HTTP transport for photo validation.
type Service struct {
	config    *config.Config
	logger    *logging.Logger
	validator *compliance.Validator
	reports   *report.Service
	cache     cache.Cache
}

// NewService creates the photo validation endpoint.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	validator *compliance.Validator,
	reports *report.Service,
	resultCache cache.Cache,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "photo.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "photo.new", "logger is required")
	}
	if validator == nil {
		return nil, errors.New(errors.KindConfig, "photo.new", "validator is required")
	}

	return &Service{
		config:    cfg,
		logger:    logger,
		validator: validator,
		reports:   reports,
		cache:     resultCache,
	}, nil
}

// Register mounts the photo routes on the given group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/photo", s.handleGet)
	router.POST("/photo", s.handlePost)

	s.logger.InfoTag("HTTP", "photo routes registered")
	return nil
}

// handleGet reports endpoint status and the active requirements.
func (s *Service) handleGet(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"status": "ready",
		"requirements": gin.H{
			"width":       s.config.Compliance.TargetWidth,
			"height":      s.config.Compliance.TargetHeight,
			"min_file_kb": s.config.Compliance.MinFileKB,
			"max_file_kb": s.config.Compliance.MaxFileKB,
			"format":      "jpeg",
		},
		"modes": []string{"standard", "lenient"},
	}, "")
}

// validateRequest is the JSON body alternative to multipart upload.
type validateRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
	Mode     string `json:"mode"`
}

// validateResponse pairs the engine result with the stored report ID.
type validateResponse struct {
	ReportID string             `json:"report_id,omitempty"`
	Cached   bool               `json:"cached"`
	Result   *compliance.Result `json:"result"`
}

// handlePost accepts a photo as a multipart upload or a base64 JSON
// body, validates it and persists a report.
func (s *Service) handlePost(c *gin.Context) {
	data, filename, mode, err := s.readPhoto(c)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(data) == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "empty photo payload", nil)
		return
	}
	if len(data) > MaxFileSize {
		httptransport.RespondError(c, http.StatusRequestEntityTooLarge, "photo exceeds the 5MB upload limit", nil)
		return
	}

	ctx := c.Request.Context()
	key := cache.Key(data, mode)

	if s.cache != nil {
		if cached, ok, cacheErr := s.cache.Get(ctx, key); cacheErr == nil && ok {
			s.logger.DebugTag("CACHE", "result cache hit: key=%s", key[:16])
			httptransport.RespondSuccess(c, http.StatusOK, validateResponse{
				Cached: true,
				Result: cached,
			}, "")
			return
		}
	}

	input := compliance.Input{
		Bytes:         data,
		FileSizeBytes: int64(len(data)),
		Extension:     extensionOf(filename, data),
		Mode:          mode,
	}
	result := s.validator.ValidateWithThresholds(ctx, input, s.thresholdsFor(mode))

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, key, result); cacheErr != nil {
			s.logger.WarnTag("CACHE", "failed to cache result: %v", cacheErr)
		}
	}

	response := validateResponse{Result: result}
	if s.reports != nil {
		sha := strings.SplitN(key, ":", 2)[0]
		rep, recErr := s.reports.Record(ctx, httptransport.ClientID(c), filename, mode, sha, result)
		if recErr != nil {
			s.logger.ErrorTag("STORAGE", "failed to persist report: %v", recErr)
		} else {
			response.ReportID = rep.ID
		}
	}

	httptransport.RespondSuccess(c, http.StatusOK, response, "")
}

// readPhoto extracts the image bytes, filename and mode from either a
// multipart form or a JSON body.
func (s *Service) readPhoto(c *gin.Context) (data []byte, filename, mode string, err error) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, formErr := c.Request.FormFile("photo")
		if formErr != nil {
			file, header, formErr = c.Request.FormFile("file")
		}
		if formErr != nil {
			return nil, "", "", errors.Wrap(errors.KindTransport, "photo.read", "missing photo file field", formErr)
		}
		defer file.Close()

		data, err = io.ReadAll(io.LimitReader(file, MaxFileSize+1))
		if err != nil {
			return nil, "", "", errors.Wrap(errors.KindTransport, "photo.read", "failed to read upload", err)
		}
		return data, header.Filename, s.resolveMode(c.PostForm("mode"), c.Query("mode")), nil
	}

	var req validateRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		return nil, "", "", errors.Wrap(errors.KindTransport, "photo.read", "invalid request body", bindErr)
	}
	if req.Image == "" {
		return nil, "", "", errors.New(errors.KindTransport, "photo.read", "missing image payload")
	}

	data, err = base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, "", "", errors.Wrap(errors.KindTransport, "photo.read", "invalid base64 image", err)
	}
	return data, req.Filename, s.resolveMode(req.Mode, c.Query("mode")), nil
}

func (s *Service) resolveMode(candidates ...string) string {
	for _, mode := range candidates {
		if mode != "" {
			return strings.ToLower(mode)
		}
	}
	if s.config.Compliance.Mode != "" {
		return s.config.Compliance.Mode
	}
	return "standard"
}

// thresholdsFor overlays the configured target dimensions and file
// bounds onto the mode's threshold set.
func (s *Service) thresholdsFor(mode string) compliance.Thresholds {
	t := compliance.ForMode(mode)
	if s.config.Compliance.TargetWidth > 0 {
		t.TargetWidth = s.config.Compliance.TargetWidth
	}
	if s.config.Compliance.TargetHeight > 0 {
		t.TargetHeight = s.config.Compliance.TargetHeight
	}
	if s.config.Compliance.MinFileKB > 0 {
		t.MinFileKB = s.config.Compliance.MinFileKB
	}
	if s.config.Compliance.MaxFileKB > 0 {
		t.MaxFileKB = s.config.Compliance.MaxFileKB
	}
	return t
}

// extensionOf prefers the filename extension and falls back to content
// sniffing for base64 uploads without a filename.
func extensionOf(filename string, data []byte) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}
	return ""
}

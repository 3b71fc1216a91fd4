// Package report serves stored compliance reports over HTTP.
package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainreport "photocheck-server-go/internal/domain/report"
	"photocheck-server-go/internal/platform/errors"
	"photocheck-server-go/internal/platform/logging"
	httptransport "photocheck-server-go/internal/transport/http"
)

// Service is the HTTP transport for stored reports.
type Service struct {
	logger  *logging.Logger
	reports *domainreport.Service
}

// NewService creates the report endpoints.
func NewService(logger *logging.Logger, reports *domainreport.Service) (*Service, error) {
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "report.new", "logger is required")
	}
	if reports == nil {
		return nil, errors.New(errors.KindConfig, "report.new", "report service is required")
	}
	return &Service{
		logger:  logger,
		reports: reports,
	}, nil
}

// Register mounts the report routes on the given group.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	router.GET("/reports", s.handleList)
	router.GET("/reports/:id", s.handleGet)

	s.logger.InfoTag("HTTP", "report routes registered")
	return nil
}

type listResponse struct {
	Reports []*domainreport.Report `json:"reports"`
	Total   int64                  `json:"total"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

func (s *Service) handleList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = httptransport.ClientID(c)
	}

	query := domainreport.ListQuery{
		ClientID: clientID,
		Limit:    limit,
		Offset:   offset,
	}
	reports, total, err := s.reports.List(c.Request.Context(), query)
	if err != nil {
		s.logger.ErrorTag("HTTP", "list reports failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list reports", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, listResponse{
		Reports: reports,
		Total:   total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	}, "")
}

func (s *Service) handleGet(c *gin.Context) {
	id := c.Param("id")

	rep, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		if errors.IsKind(err, errors.KindDomain) {
			httptransport.RespondError(c, http.StatusNotFound, "report not found", nil)
			return
		}
		s.logger.ErrorTag("HTTP", "get report failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to load report", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, rep, "")
}

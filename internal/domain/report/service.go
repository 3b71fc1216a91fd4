package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/platform/errors"
	"photocheck-server-go/internal/platform/logging"
)

// Service records validation outcomes and serves stored reports.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService builds a report service on the given repository.
func NewService(repo Repository, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record stores the outcome of one validation and returns the saved
// report with its generated ID.
func (s *Service) Record(ctx context.Context, clientID, filename, mode, sha256 string, result *compliance.Result) (*Report, error) {
	if result == nil {
		return nil, errors.New(errors.KindDomain, "report.record", "result is required")
	}

	rep := &Report{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Filename:  filename,
		Mode:      mode,
		SHA256:    sha256,
		Score:     result.Score,
		Valid:     result.Valid,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if rep.Mode == "" {
		rep.Mode = "standard"
	}

	if err := s.repo.Save(ctx, rep); err != nil {
		return nil, err
	}
	s.logger.DebugTag("STORAGE", "report recorded: id=%s valid=%t score=%.1f", rep.ID, rep.Valid, rep.Score)
	return rep, nil
}

// Get returns one report by ID, or a domain error when it is missing.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, errors.New(errors.KindDomain, "report.get", "report not found")
	}
	return rep, nil
}

// List returns stored reports, newest first. Limit defaults to 50 and
// caps at 200.
func (s *Service) List(ctx context.Context, query ListQuery) ([]*Report, int64, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	reports, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, query.ClientID)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

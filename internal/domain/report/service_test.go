package report

import (
	"context"
	"testing"

	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/platform/errors"
	platformtesting "photocheck-server-go/internal/platform/testing"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	saved []*Report
}

func (r *fakeRepo) Save(_ context.Context, rep *Report) error {
	r.saved = append(r.saved, rep)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Report, error) {
	for _, rep := range r.saved {
		if rep.ID == id {
			return rep, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(_ context.Context, query ListQuery) ([]*Report, error) {
	out := make([]*Report, 0, len(r.saved))
	for _, rep := range r.saved {
		if query.ClientID != "" && rep.ClientID != query.ClientID {
			continue
		}
		out = append(out, rep)
	}
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *fakeRepo) Count(_ context.Context, clientID string) (int64, error) {
	var count int64
	for _, rep := range r.saved {
		if clientID == "" || rep.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func testResult() *compliance.Result {
	return &compliance.Result{
		Valid:   true,
		Score:   92,
		Issues:  []compliance.Issue{},
		Checks:  map[string]bool{compliance.CheckDimensions: true},
		Metrics: map[string]float64{"face_ratio": 0.6},
	}
}

func TestService_Record(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	service := NewService(repo, platformtesting.SetupTestLogger(t))

	rep, err := service.Record(ctx, "client-1", "photo.jpg", "", "abc123", testResult())
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if rep.ID == "" {
		t.Error("expected a generated report ID")
	}
	if rep.Mode != "standard" {
		t.Errorf("empty mode should default to standard, got %q", rep.Mode)
	}
	if rep.Score != 92 || !rep.Valid {
		t.Errorf("report does not reflect the result: %+v", rep)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 saved report, got %d", len(repo.saved))
	}
}

func TestService_RecordNilResult(t *testing.T) {
	service := NewService(&fakeRepo{}, platformtesting.SetupTestLogger(t))
	if _, err := service.Record(context.Background(), "c", "f.jpg", "standard", "sha", nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestService_GetMissing(t *testing.T) {
	service := NewService(&fakeRepo{}, platformtesting.SetupTestLogger(t))

	_, err := service.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing report")
	}
	if !errors.IsKind(err, errors.KindDomain) {
		t.Errorf("expected domain error, got %v", err)
	}
}

func TestService_ListDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	service := NewService(repo, platformtesting.SetupTestLogger(t))

	for i := 0; i < 3; i++ {
		if _, err := service.Record(ctx, "client-1", "photo.jpg", "standard", "sha", testResult()); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}
	if _, err := service.Record(ctx, "client-2", "photo.jpg", "standard", "sha", testResult()); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	reports, total, err := service.List(ctx, ListQuery{ClientID: "client-1"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(reports) != 3 {
		t.Errorf("len(reports) = %d, want 3", len(reports))
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

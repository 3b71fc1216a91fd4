package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/domain/report"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ReportRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testReport(id, clientID string, createdAt time.Time) *report.Report {
	return &report.Report{
		ID:       id,
		ClientID: clientID,
		Filename: "photo.jpg",
		Mode:     "standard",
		SHA256:   "abc123",
		Score:    88.5,
		Valid:    true,
		Result: &compliance.Result{
			Valid:   true,
			Score:   88.5,
			Issues:  []compliance.Issue{},
			Checks:  map[string]bool{compliance.CheckDimensions: true},
			Metrics: map[string]float64{"face_ratio": 0.58},
		},
		CreatedAt: createdAt,
	}
}

func TestReportRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(testDB(t))

	want := testReport("report-1", "client-1", time.Now().UTC())
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := repo.FindByID(ctx, "report-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a report")
	}
	if got.Score != want.Score || got.ClientID != want.ClientID {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Result == nil || got.Result.Metrics["face_ratio"] != 0.58 {
		t.Errorf("result JSON did not round trip: %+v", got.Result)
	}
}

func TestReportRepository_FindMissing(t *testing.T) {
	repo := NewReportRepository(testDB(t))

	got, err := repo.FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing report, got %+v", got)
	}
}

func TestReportRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(testDB(t))

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"r1", "r2", "r3"} {
		rep := testReport(id, "client-1", base.Add(time.Duration(i)*time.Minute))
		if err := repo.Save(ctx, rep); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}
	if err := repo.Save(ctx, testReport("r4", "client-2", base)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	reports, err := repo.List(ctx, report.ListQuery{ClientID: "client-1"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("len(reports) = %d, want 3", len(reports))
	}
	// Newest first.
	if reports[0].ID != "r3" {
		t.Errorf("first report = %s, want r3", reports[0].ID)
	}

	limited, err := repo.List(ctx, report.ListQuery{ClientID: "client-1", Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "r2" {
		t.Errorf("paged list mismatch: %+v", limited)
	}

	total, err := repo.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

package storage

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"photocheck-server-go/internal/domain/compliance"
	"photocheck-server-go/internal/domain/report"
	"photocheck-server-go/internal/platform/errors"
)

// reportRepository is the GORM-backed report.Repository implementation.
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a report repository on the given database.
func NewReportRepository(db *gorm.DB) report.Repository {
	return &reportRepository{
		db: db,
	}
}

// Save persists a report.
func (r *reportRepository) Save(ctx context.Context, rep *report.Report) error {
	model, err := r.toModel(rep)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "report.save", "failed to save report", err)
	}
	return nil
}

// FindByID looks up a report by its ID. Returns nil when not found.
func (r *reportRepository) FindByID(ctx context.Context, id string) (*report.Report, error) {
	var model ReportRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(errors.KindStorage, "report.find_by_id", "failed to find report", err)
	}
	return r.fromModel(&model)
}

// List returns reports newest first, optionally filtered by client.
func (r *reportRepository) List(ctx context.Context, query report.ListQuery) ([]*report.Report, error) {
	tx := r.db.WithContext(ctx).Model(&ReportRecord{}).Order("created_at DESC")
	if query.ClientID != "" {
		tx = tx.Where("client_id = ?", query.ClientID)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}

	var models []ReportRecord
	if err := tx.Find(&models).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "report.list", "failed to list reports", err)
	}

	reports := make([]*report.Report, 0, len(models))
	for i := range models {
		rep, err := r.fromModel(&models[i])
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// Count returns the number of stored reports for a client, or all reports
// when clientID is empty.
func (r *reportRepository) Count(ctx context.Context, clientID string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&ReportRecord{})
	if clientID != "" {
		tx = tx.Where("client_id = ?", clientID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "report.count", "failed to count reports", err)
	}
	return count, nil
}

func (r *reportRepository) toModel(rep *report.Report) (*ReportRecord, error) {
	data, err := json.Marshal(rep.Result)
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "report.encode", "failed to encode result", err)
	}
	return &ReportRecord{
		ID:        rep.ID,
		ClientID:  rep.ClientID,
		Filename:  rep.Filename,
		Mode:      rep.Mode,
		SHA256:    rep.SHA256,
		Score:     rep.Score,
		Valid:     rep.Valid,
		Result:    data,
		CreatedAt: rep.CreatedAt,
	}, nil
}

func (r *reportRepository) fromModel(model *ReportRecord) (*report.Report, error) {
	var result compliance.Result
	if len(model.Result) > 0 {
		if err := json.Unmarshal(model.Result, &result); err != nil {
			return nil, errors.Wrap(errors.KindStorage, "report.decode", "failed to decode result", err)
		}
	}
	return &report.Report{
		ID:        model.ID,
		ClientID:  model.ClientID,
		Filename:  model.Filename,
		Mode:      model.Mode,
		SHA256:    model.SHA256,
		Score:     model.Score,
		Valid:     model.Valid,
		Result:    &result,
		CreatedAt: model.CreatedAt,
	}, nil
}

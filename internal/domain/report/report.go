// Package report persists compliance check results so clients can
// retrieve them after the fact.
package report

import (
	"context"
	"time"

	"photocheck-server-go/internal/domain/compliance"
)

// Report is a stored record of a single compliance check.
type Report struct {
	ID        string             `json:"id"`
	ClientID  string             `json:"client_id,omitempty"`
	Filename  string             `json:"filename"`
	Mode      string             `json:"mode"`
	SHA256    string             `json:"sha256"`
	Score     float64            `json:"score"`
	Valid     bool               `json:"valid"`
	Result    *compliance.Result `json:"result,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ListQuery narrows a report listing.
type ListQuery struct {
	ClientID string
	Limit    int
	Offset   int
}

// Repository stores and retrieves reports.
type Repository interface {
	Save(ctx context.Context, report *Report) error
	FindByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, query ListQuery) ([]*Report, error)
	Count(ctx context.Context, clientID string) (int64, error)
}

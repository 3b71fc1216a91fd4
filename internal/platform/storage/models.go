package storage

import (
	"time"

	"gorm.io/datatypes"
)

// ReportRecord is the GORM model backing stored compliance reports.
type ReportRecord struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"           json:"id"`
	ClientID  string         `gorm:"type:varchar(255);index"               json:"client_id"`
	Filename  string         `                                             json:"filename"`
	Mode      string         `gorm:"type:varchar(16)"                      json:"mode"`
	SHA256    string         `gorm:"type:varchar(64);index"                json:"sha256"`
	Score     float64        `                                             json:"score"`
	Valid     bool           `                                             json:"valid"`
	Result    datatypes.JSON `                                             json:"result"`
	CreatedAt time.Time      `gorm:"index"                                 json:"created_at"`
}

// TableName keeps the table name stable across GORM versions.
func (ReportRecord) TableName() string {
	return "reports"
}

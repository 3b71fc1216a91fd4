package migrations

import (
	"gorm.io/gorm"
)

// Migration001Initial creates the base schema.
type Migration001Initial struct{}

func (m *Migration001Initial) Version() string {
	return "001_initial"
}

func (m *Migration001Initial) Description() string {
	return "Create initial reports schema"
}

func (m *Migration001Initial) Up(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id VARCHAR(36) PRIMARY KEY,
			client_id VARCHAR(255),
			filename VARCHAR(512),
			mode VARCHAR(16),
			sha256 VARCHAR(64),
			score REAL NOT NULL DEFAULT 0,
			valid BOOLEAN NOT NULL DEFAULT 0,
			result JSON,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_client_id ON reports(client_id)`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_sha256 ON reports(sha256)`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`).Error
}

func (m *Migration001Initial) Down(db *gorm.DB) error {
	return db.Exec(`DROP TABLE IF EXISTS reports`).Error
}

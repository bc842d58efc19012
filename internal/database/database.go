package database

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentfair/server/internal/models"
)

// EstimateRecord is one completed estimate, persisted so a session can show
// its recent history.
type EstimateRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	SessionID           string    `gorm:"index" json:"session_id"`
	PostalCode          int       `json:"postal_code"`
	City                string    `json:"city"`
	Rooms               float64   `json:"rooms"`
	SizeSqm             float64   `json:"size_sqm"`
	PropertyType        string    `json:"property_type"`
	PointEstimate       float64   `json:"point_estimate"`
	LowerBound          int       `json:"lower_bound"`
	UpperBound          int       `json:"upper_bound"`
	MarketAvgPerSqmYear float64   `json:"market_avg_per_sqm_year"`
	CreatedAt           time.Time `json:"created_at"`
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(&EstimateRecord{})
}

// SaveEstimate appends one completed estimate to the history.
func (d *Database) SaveEstimate(sessionID string, record models.PropertyRecord, estimate models.PriceEstimate) error {
	row := EstimateRecord{
		SessionID:     sessionID,
		PostalCode:    record.PostalCode,
		City:          record.City,
		Rooms:         record.Rooms,
		SizeSqm:       record.Size,
		PropertyType:  record.PropertyType,
		PointEstimate: estimate.Point,
		LowerBound:    estimate.LowerBound,
		UpperBound:    estimate.UpperBound,
	}
	if estimate.Market != nil {
		row.MarketAvgPerSqmYear = estimate.Market.AveragePerSqmYear
	}
	return d.db.Create(&row).Error
}

// RecentEstimates returns the session's estimates, newest first.
func (d *Database) RecentEstimates(sessionID string, limit int) ([]EstimateRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []EstimateRecord
	err := d.db.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

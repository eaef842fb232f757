package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"deepscan-server/internal/platform/errors"
)

// AnalysisRecord is one completed analysis, persisted for the history endpoint.
type AnalysisRecord struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Filename         string    `gorm:"type:varchar(255);not null"  json:"filename"`
	Format           string    `gorm:"type:varchar(16)"            json:"format"`
	Width            int       `                                   json:"width"`
	Height           int       `                                   json:"height"`
	IsFake           bool      `                                   json:"is_fake"`
	Confidence       float64   `                                   json:"confidence"`
	GenerationMethod string    `gorm:"type:varchar(32)"            json:"generation_method,omitempty"`
	ProcessingTimeMs float64   `                                   json:"processing_time"`
	ModelVersion     string    `gorm:"type:varchar(64)"            json:"model_version"`
	CreatedAt        time.Time `gorm:"index"                       json:"created_at"`
}

// HistoryRepository stores and queries analysis records.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save persists one analysis record.
func (r *HistoryRepository) Save(ctx context.Context, record *AnalysisRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "history.save", "failed to save analysis record", err)
	}
	return nil
}

// Recent returns the newest records, capped at limit.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []AnalysisRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "history.recent", "failed to query analysis records", err)
	}
	return records, nil
}

// Count reports the total number of stored records.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&AnalysisRecord{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "history.count", "failed to count analysis records", err)
	}
	return count, nil
}

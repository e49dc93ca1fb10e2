package database

import (
	"context"
	"fmt"
	"mower-core/internal/models"
	"time"

	"gorm.io/gorm"
)

const writeTimeout = 3 * time.Second

// TelemetryRecorder 스로틀된 상태 푸시를 telemetry_records 에 한 행씩 기록하는 sink
type TelemetryRecorder struct {
	db      *gorm.DB
	mowerID string
}

func NewTelemetryRecorder(db *gorm.DB, mowerID string) *TelemetryRecorder {
	return &TelemetryRecorder{db: db, mowerID: mowerID}
}

func (r *TelemetryRecorder) Push(s models.Status) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(models.NewTelemetryRecord(r.mowerID, s)).Error; err != nil {
		return fmt.Errorf("failed to record telemetry: %w", err)
	}
	return nil
}

// Recent 최근 기록 limit 개 (최신 순)
func (r *TelemetryRecorder) Recent(ctx context.Context, limit int) ([]models.TelemetryRecord, error) {
	var records []models.TelemetryRecord
	err := r.recent(r.db.WithContext(ctx), limit).Find(&records).Error
	return records, err
}

func (r *TelemetryRecorder) recent(tx *gorm.DB, limit int) *gorm.DB {
	return tx.Where("mower_id = ?", r.mowerID).
		Order("created_at DESC").
		Limit(limit)
}

package repository

import (
	"fmt"

	"gorm.io/gorm"

	"slide2pdf/internal/model"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(record *model.ConversionRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create conversion record failed: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListRecent(limit int) ([]model.ConversionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []model.ConversionRecord
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list conversion records failed: %w", err)
	}
	return records, nil
}

type RecordStats struct {
	Total        int64 `json:"total"`
	Succeeded    int64 `json:"succeeded"`
	Failed       int64 `json:"failed"`
	FilesHandled int64 `json:"files_handled"`
}

func (r *RecordRepository) Stats() (*RecordStats, error) {
	var stats RecordStats
	if err := r.db.Model(&model.ConversionRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("count conversion records failed: %w", err)
	}
	if err := r.db.Model(&model.ConversionRecord{}).Where("succeeded = ?", true).Count(&stats.Succeeded).Error; err != nil {
		return nil, fmt.Errorf("count succeeded records failed: %w", err)
	}
	stats.Failed = stats.Total - stats.Succeeded
	var filesHandled int64
	if err := r.db.Model(&model.ConversionRecord{}).Select("COALESCE(SUM(file_count), 0)").Scan(&filesHandled).Error; err != nil {
		return nil, fmt.Errorf("sum file counts failed: %w", err)
	}
	stats.FilesHandled = filesHandled
	return &stats, nil
}

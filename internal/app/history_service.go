package app

import (
	"slide2pdf/internal/model"
	"slide2pdf/internal/repository"
)

type HistoryService struct {
	recordRepo *repository.RecordRepository
}

func NewHistoryService(recordRepo *repository.RecordRepository) *HistoryService {
	return &HistoryService{recordRepo: recordRepo}
}

func (s *HistoryService) Recent(limit int) ([]model.ConversionRecord, error) {
	return s.recordRepo.ListRecent(limit)
}

func (s *HistoryService) Stats() (*repository.RecordStats, error) {
	return s.recordRepo.Stats()
}

package model

import "time"

// ConversionRecord is the audit row written for every finished conversion
// request when history is enabled.
type ConversionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   string    `gorm:"size:36;not null;index" json:"request_id"`
	FileCount   int       `gorm:"not null" json:"file_count"`
	InputNames  string    `gorm:"size:2048" json:"input_names"`
	OutputName  string    `gorm:"size:512" json:"output_name"`
	Succeeded   bool      `gorm:"not null;index" json:"succeeded"`
	FailReason  string    `gorm:"size:512" json:"fail_reason"`
	DurationMS  int64     `gorm:"not null" json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

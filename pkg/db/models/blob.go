package models

import (
	"time"

	"github.com/google/uuid"
)

// Blob records metadata for a stored binary object. The bytes themselves
// live in the blob backend under StorageKey; this row is the reference table.
type Blob struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileName    string    `gorm:"column:file_name;not null"`
	ContentType string    `gorm:"column:content_type;not null"`
	SizeBytes   int64     `gorm:"column:size_bytes;not null"`
	StorageKey  string    `gorm:"column:storage_key;not null;unique"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryEntry is one ordered slot in a user's file gallery. A blob is
// referenced by at most one entry across the whole directory.
type GalleryEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	BlobID    uuid.UUID `gorm:"column:blob_id;type:uuid;not null;uniqueIndex:idx_gallery_blob"`
	FileName  string    `gorm:"column:file_name;not null"`
	Position  int       `gorm:"column:position;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

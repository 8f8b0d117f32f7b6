package blobs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
)

// Repository persists blob reference rows and gallery slots.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a blobs repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateBlob inserts the reference row for a stored object.
func (r *Repository) CreateBlob(ctx context.Context, blob *models.Blob) error {
	return r.db.WithContext(ctx).Create(blob).Error
}

// FindBlob loads a blob reference row.
func (r *Repository) FindBlob(ctx context.Context, id uuid.UUID) (*models.Blob, error) {
	var blob models.Blob
	if err := r.db.WithContext(ctx).First(&blob, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &blob, nil
}

// DeleteBlob removes the reference row.
func (r *Repository) DeleteBlob(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Blob{}, "id = ?", id).Error
}

// ListGallery returns a user's gallery slots in stored order.
func (r *Repository) ListGallery(ctx context.Context, userID uuid.UUID) ([]models.GalleryEntry, error) {
	var entries []models.GalleryEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// NextGalleryPosition returns the position for the next appended slot.
func (r *Repository) NextGalleryPosition(ctx context.Context, userID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.GalleryEntry{}).
		Where("user_id = ?", userID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// AppendGalleryEntries inserts new slots at the end of a user's gallery.
func (r *Repository) AppendGalleryEntries(ctx context.Context, entries []models.GalleryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// FindGalleryEntryByBlob locates the slot currently referencing a blob.
func (r *Repository) FindGalleryEntryByBlob(ctx context.Context, blobID uuid.UUID) (*models.GalleryEntry, error) {
	var entry models.GalleryEntry
	if err := r.db.WithContext(ctx).First(&entry, "blob_id = ?", blobID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteGalleryEntry removes one slot. Positions of later slots keep their
// values; order stays monotonic, which is all the gallery guarantees.
func (r *Repository) DeleteGalleryEntry(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.GalleryEntry{}, "id = ?", id).Error
}

// SetProfilePicID points a user row at a new profile picture blob, or
// clears it with nil.
func (r *Repository) SetProfilePicID(ctx context.Context, userID uuid.UUID, blobID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("profile_pic_id", blobID).Error
}

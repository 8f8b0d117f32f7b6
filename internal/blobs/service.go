package blobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/pkg/auth"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/storage"
)

// UploadFile is one whole-file payload handed in by the boundary layer.
type UploadFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// FileContent is the result of a blob fetch.
type FileContent struct {
	FileName    string
	ContentType string
	Data        []byte
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service keeps blob objects and the owning user's references consistent.
type Service interface {
	UploadToGallery(ctx context.Context, actor auth.Identity, files []UploadFile) ([]models.GalleryEntry, error)
	ListUserFiles(ctx context.Context, actor auth.Identity) ([]models.GalleryEntry, error)
	ReplaceSelfProfilePicture(ctx context.Context, actor auth.Identity, file UploadFile) error
	ReplaceProfilePictureFor(ctx context.Context, target *models.User, file UploadFile) error
	AddFileForUser(ctx context.Context, targetID uuid.UUID, file UploadFile) (*models.GalleryEntry, error)
	RemoveFile(ctx context.Context, blobID uuid.UUID) error
	FetchFile(ctx context.Context, actor auth.Identity, blobID uuid.UUID) (*FileContent, error)
	FetchProfilePicture(ctx context.Context, userID uuid.UUID) (*FileContent, string, error)
	PurgeUserBlobs(ctx context.Context, user *models.User) PurgeResult
}

type service struct {
	repo  *Repository
	store storage.ObjectStore
	users userLoader
	logg  *logger.Logger
}

// NewService constructs the blob lifecycle service.
func NewService(repo *Repository, store storage.ObjectStore, users userLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("blobs: repository is required")
	}
	if store == nil {
		return nil, errors.New("blobs: object store is required")
	}
	if users == nil {
		return nil, errors.New("blobs: user loader is required")
	}
	if logg == nil {
		return nil, errors.New("blobs: logger is required")
	}
	return &service{repo: repo, store: store, users: users, logg: logg}, nil
}

func storageKey(blobID uuid.UUID) string {
	return "blobs/" + blobID.String()
}

// upload stores the payload and inserts the reference row; the caller is
// responsible for attaching the returned blob to a user record.
func (s *service) upload(ctx context.Context, file UploadFile) (*models.Blob, error) {
	blob := &models.Blob{
		ID:          uuid.New(),
		FileName:    file.FileName,
		ContentType: file.ContentType,
		SizeBytes:   int64(len(file.Data)),
	}
	blob.StorageKey = storageKey(blob.ID)

	if err := s.store.UploadObject(ctx, blob.StorageKey, blob.ContentType, bytes.NewReader(file.Data)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing file failed")
	}
	if err := s.repo.CreateBlob(ctx, blob); err != nil {
		if delErr := s.store.DeleteObject(ctx, blob.StorageKey); delErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "blob_id", blob.ID.String()), "orphaned object after failed blob insert")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording file failed")
	}
	return blob, nil
}

// deleteBlob removes the stored object and its reference row. The storage
// key is derived from the id, so a missing row does not block cleanup.
func (s *service) deleteBlob(ctx context.Context, blobID uuid.UUID) error {
	var combined error
	if err := s.store.DeleteObject(ctx, storageKey(blobID)); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		combined = multierr.Append(combined, fmt.Errorf("object: %w", err))
	}
	if err := s.repo.DeleteBlob(ctx, blobID); err != nil {
		combined = multierr.Append(combined, fmt.Errorf("row: %w", err))
	}
	return combined
}

func (s *service) UploadToGallery(ctx context.Context, actor auth.Identity, files []UploadFile) ([]models.GalleryEntry, error) {
	if !auth.IsSelfService(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only users can upload files")
	}
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no files supplied")
	}

	position, err := s.repo.NextGalleryPosition(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading gallery failed")
	}

	entries := make([]models.GalleryEntry, 0, len(files))
	for i, file := range files {
		blob, err := s.upload(ctx, file)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.GalleryEntry{
			ID:       uuid.New(),
			UserID:   actor.ID,
			BlobID:   blob.ID,
			FileName: blob.FileName,
			Position: position + i,
		})
	}
	if err := s.repo.AppendGalleryEntries(ctx, entries); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording gallery entries failed")
	}
	return entries, nil
}

func (s *service) ListUserFiles(ctx context.Context, actor auth.Identity) ([]models.GalleryEntry, error) {
	if !auth.IsSelfService(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only users can list their files")
	}
	entries, err := s.repo.ListGallery(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading gallery failed")
	}
	return entries, nil
}

func (s *service) ReplaceSelfProfilePicture(ctx context.Context, actor auth.Identity, file UploadFile) error {
	if !auth.IsSelfService(actor) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only users can update their profile picture")
	}
	target, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user failed")
	}
	return s.ReplaceProfilePictureFor(ctx, target, file)
}

// ReplaceProfilePictureFor deletes the old picture first, then uploads and
// attaches the new one. A failed old-delete is logged and never blocks the
// replacement.
func (s *service) ReplaceProfilePictureFor(ctx context.Context, target *models.User, file UploadFile) error {
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	if target.ProfilePicID != nil {
		if err := s.deleteBlob(ctx, *target.ProfilePicID); err != nil {
			s.logg.Warn(
				s.logg.WithFields(ctx, map[string]any{"user_id": target.ID.String(), "blob_id": target.ProfilePicID.String()}),
				"old profile picture could not be deleted",
			)
		}
	}

	blob, err := s.upload(ctx, file)
	if err != nil {
		return err
	}
	if err := s.repo.SetProfilePicID(ctx, target.ID, &blob.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attaching profile picture failed")
	}
	return nil
}

func (s *service) AddFileForUser(ctx context.Context, targetID uuid.UUID, file UploadFile) (*models.GalleryEntry, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user failed")
	}
	if target.Role != enums.RoleUser {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "files can only be added to 'user' roles")
	}

	position, err := s.repo.NextGalleryPosition(ctx, targetID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading gallery failed")
	}

	blob, err := s.upload(ctx, file)
	if err != nil {
		return nil, err
	}
	entry := models.GalleryEntry{
		ID:       uuid.New(),
		UserID:   targetID,
		BlobID:   blob.ID,
		FileName: blob.FileName,
		Position: position,
	}
	if err := s.repo.AppendGalleryEntries(ctx, []models.GalleryEntry{entry}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording gallery entry failed")
	}
	return &entry, nil
}

func (s *service) RemoveFile(ctx context.Context, blobID uuid.UUID) error {
	entry, err := s.repo.FindGalleryEntryByBlob(ctx, blobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "file not found in any user gallery")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locating file owner failed")
	}

	if err := s.deleteBlob(ctx, blobID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "blob_id", blobID.String()), "blob could not be fully deleted")
	}
	if err := s.repo.DeleteGalleryEntry(ctx, entry.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing gallery entry failed")
	}
	return nil
}

// FetchFile serves gallery file bytes to staff or the owning user.
func (s *service) FetchFile(ctx context.Context, actor auth.Identity, blobID uuid.UUID) (*FileContent, error) {
	blob, err := s.repo.FindBlob(ctx, blobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading file failed")
	}

	if !auth.IsStaff(actor) {
		entry, err := s.repo.FindGalleryEntryByBlob(ctx, blobID)
		if err != nil || !auth.IsOwner(actor, entry.UserID) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
		}
	}

	data, err := s.store.DownloadObject(ctx, blob.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading file failed")
	}
	return &FileContent{FileName: blob.FileName, ContentType: blob.ContentType, Data: data}, nil
}

// FetchProfilePicture is public; any failure surfaces as NotFound so the
// boundary can fall back to the placeholder. The owner's name travels with
// the error whenever the user record was readable, so the placeholder can
// carry the right initial.
func (s *service) FetchProfilePicture(ctx context.Context, userID uuid.UUID) (*FileContent, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "profile picture not found")
	}
	if user.ProfilePicID == nil {
		return nil, user.Name, pkgerrors.New(pkgerrors.CodeNotFound, "profile picture not found")
	}

	blob, err := s.repo.FindBlob(ctx, *user.ProfilePicID)
	if err != nil {
		return nil, user.Name, pkgerrors.New(pkgerrors.CodeNotFound, "profile picture not found")
	}
	data, err := s.store.DownloadObject(ctx, blob.StorageKey)
	if err != nil {
		return nil, user.Name, pkgerrors.New(pkgerrors.CodeNotFound, "profile picture not found")
	}
	return &FileContent{FileName: blob.FileName, ContentType: blob.ContentType, Data: data}, user.Name, nil
}

// PurgeUserBlobs sweeps every blob a user references with independent
// best-effort deletions. It never aborts; callers inspect the outcomes.
func (s *service) PurgeUserBlobs(ctx context.Context, user *models.User) PurgeResult {
	var result PurgeResult
	if user == nil {
		return result
	}

	for _, entry := range user.Gallery {
		result.Outcomes = append(result.Outcomes, PurgeOutcome{
			BlobID:   entry.BlobID,
			FileName: entry.FileName,
			Kind:     PurgeKindGallery,
			Err:      s.deleteBlob(ctx, entry.BlobID),
		})
	}
	if user.ProfilePicID != nil {
		result.Outcomes = append(result.Outcomes, PurgeOutcome{
			BlobID: *user.ProfilePicID,
			Kind:   PurgeKindProfilePic,
			Err:    s.deleteBlob(ctx, *user.ProfilePicID),
		})
	}

	if err := result.Err(); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "user_id", user.ID.String()), "some blobs could not be purged", err)
	}
	return result
}

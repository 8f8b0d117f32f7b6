package controllers

import (
	"fmt"
	"net/http"

	"github.com/peopledesk/peopledesk-backend/api/responses"
	"github.com/peopledesk/peopledesk-backend/api/validators"
	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

// GalleryFileResponse is one uploaded-file reference in API payloads.
type GalleryFileResponse struct {
	ID       string `json:"id"`
	FileName string `json:"filename"`
}

func galleryResponse(entries []models.GalleryEntry) []GalleryFileResponse {
	out := make([]GalleryFileResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, GalleryFileResponse{ID: entry.BlobID.String(), FileName: entry.FileName})
	}
	return out
}

// UploadFiles appends one or more files to the caller's gallery.
func UploadFiles(svc blobs.Service, upload config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		files, err := validators.ReadMultipartFiles(r, "files_to_upload", upload.MaxUploadBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.UploadToGallery(r.Context(), actor, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": fmt.Sprintf("Successfully uploaded %d files.", len(entries)),
			"files":   galleryResponse(entries),
		})
	}
}

// MyFiles lists the caller's gallery in stored order.
func MyFiles(svc blobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListUserFiles(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, galleryResponse(entries))
	}
}

// UpdateMyProfilePic replaces the caller's profile picture and returns the
// refreshed record.
func UpdateMyProfilePic(blobSvc blobs.Service, dirSvc directory.Service, upload config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadMultipartFile(r, "profile_pic", upload.MaxUploadBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := blobSvc.ReplaceSelfProfilePicture(r.Context(), actor, file); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := dirSvc.GetSelf(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// FetchFile serves gallery file bytes as an attachment to staff or the
// owning user.
func FetchFile(svc blobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		blobID, err := pathID(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		content, err := svc.FetchFile(r.Context(), actor, blobID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", content.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.FileName))
		w.WriteHeader(http.StatusOK)
		w.Write(content.Data)
	}
}

// ProfilePic is public: it serves the stored picture inline or redirects to
// the generated placeholder when anything goes wrong. The placeholder carries
// the owner's initial when the owner is known.
func ProfilePic(svc blobs.Service, avatar config.AvatarConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			http.Redirect(w, r, directory.PlaceholderAvatarURL(avatar.PlaceholderBaseURL, ""), http.StatusFound)
			return
		}

		content, ownerName, err := svc.FetchProfilePicture(r.Context(), userID)
		if err != nil {
			http.Redirect(w, r, directory.PlaceholderAvatarURL(avatar.PlaceholderBaseURL, ownerName), http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", content.ContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(content.Data)
	}
}

// AdminAddFile attaches a file to a user-role record's gallery.
func AdminAddFile(svc blobs.Service, upload config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, err := pathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadMultipartFile(r, "file", upload.MaxUploadBytes())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AddFileForUser(r.Context(), targetID, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": "File added successfully",
			"file":    GalleryFileResponse{ID: entry.BlobID.String(), FileName: entry.FileName},
		})
	}
}

// AdminRemoveFile removes a gallery file wherever it lives.
func AdminRemoveFile(svc blobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blobID, err := pathID(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFile(r.Context(), blobID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "File deleted successfully"})
	}
}

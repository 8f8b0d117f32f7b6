package directory

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
)

// GalleryItemView is one serialized gallery slot.
type GalleryItemView struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"filename"`
}

// UserView is the outward user shape. The password digest never appears;
// email is included only when the caller is entitled to it.
type UserView struct {
	ID                    uuid.UUID         `json:"id"`
	Name                  string            `json:"name"`
	Role                  enums.Role        `json:"role"`
	AccountType           enums.AccountType `json:"account_type"`
	NeedsSensitiveStorage bool              `json:"needs_sensitive_storage"`
	CreatedAt             *string           `json:"created_at,omitempty"`
	DateOfBirth           *string           `json:"date_of_birth,omitempty"`
	AgreedToTerms         bool              `json:"agreed_to_terms"`
	EmailNotifications    bool              `json:"email_notifications"`
	Gallery               []GalleryItemView `json:"gallery"`
	ProfilePictureURL     string            `json:"profile_picture_url"`
	Email                 string            `json:"email,omitempty"`
}

// NewUserView serializes a user record. account_type is projected to the
// management sentinel for staff roles at this point only; the stored value
// is never rewritten. A real profile picture URL carries a per-fetch cache
// buster; otherwise the placeholder is keyed by the name's first letter.
func NewUserView(u *models.User, includeEmail bool, placeholderBase string, now time.Time) UserView {
	if u == nil {
		return UserView{}
	}

	view := UserView{
		ID:                    u.ID,
		Name:                  u.Name,
		Role:                  u.Role,
		AccountType:           projectedAccountType(u),
		NeedsSensitiveStorage: u.NeedsSensitiveStorage,
		DateOfBirth:           u.DateOfBirth,
		AgreedToTerms:         u.AgreedToTerms,
		EmailNotifications:    u.EmailNotifications,
		Gallery:               make([]GalleryItemView, 0, len(u.Gallery)),
		ProfilePictureURL:     profilePictureURL(u, placeholderBase, now),
	}

	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.UTC().Format(time.RFC3339)
		view.CreatedAt = &created
	}

	for _, entry := range u.Gallery {
		view.Gallery = append(view.Gallery, GalleryItemView{
			ID:       entry.BlobID,
			FileName: entry.FileName,
		})
	}

	if includeEmail {
		view.Email = u.Email
	}

	return view
}

func projectedAccountType(u *models.User) enums.AccountType {
	if u.Role.IsStaff() {
		return enums.AccountTypeManagement
	}
	if u.AccountType == "" {
		return enums.AccountTypePersonal
	}
	return u.AccountType
}

func profilePictureURL(u *models.User, placeholderBase string, now time.Time) string {
	if u.ProfilePicID != nil {
		return fmt.Sprintf("/profile_pic/%s?t=%d", u.ID, now.Unix())
	}
	return PlaceholderAvatarURL(placeholderBase, u.Name)
}

// PlaceholderAvatarURL builds the generated-avatar URL keyed by the
// uppercased first letter of the name, "U" when the name is empty.
func PlaceholderAvatarURL(placeholderBase, name string) string {
	initial := "U"
	for _, r := range name {
		initial = strings.ToUpper(string(r))
		break
	}
	return placeholderBase + "?text=" + url.QueryEscape(initial)
}

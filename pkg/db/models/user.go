package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
)

// User is the aggregate root of the directory. IDs are assigned in the
// application so the schema stays portable across postgres and sqlite.
type User struct {
	ID                    uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name                  string            `gorm:"column:name;not null"`
	Email                 string            `gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash          string            `gorm:"column:password_hash;not null"`
	Role                  enums.Role        `gorm:"column:role;not null;default:user"`
	AccountType           enums.AccountType `gorm:"column:account_type;default:personal"`
	NeedsSensitiveStorage bool              `gorm:"column:needs_sensitive_storage;not null;default:false"`
	DateOfBirth           *string           `gorm:"column:date_of_birth"`
	AgreedToTerms         bool              `gorm:"column:agreed_to_terms;not null;default:false"`
	EmailNotifications    bool              `gorm:"column:email_notifications;not null;default:false"`
	ProfilePicID          *uuid.UUID        `gorm:"column:profile_pic_id;type:uuid"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`

	Gallery []GalleryEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

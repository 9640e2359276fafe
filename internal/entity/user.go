package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func (v VerificationStatus) Valid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountFree    AccountStatus = "free"
	AccountPremium AccountStatus = "premium"
)

func (a AccountStatus) IsPremium() bool {
	return a != "" && a != AccountFree
}

type User struct {
	ID                     string             `gorm:"primaryKey;type:varchar(36);column:id" json:"id"`
	Email                  string             `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username               string             `gorm:"uniqueIndex;column:username" json:"username"`
	Password               string             `gorm:"not null;column:password" json:"-"`
	FirstName              string             `gorm:"column:first_name" json:"first_name"`
	LastName               string             `gorm:"column:last_name" json:"last_name"`
	Gender                 string             `gorm:"column:gender" json:"gender"`
	Role                   Role               `gorm:"not null;default:user;column:role" json:"role"`
	VerificationStatus     VerificationStatus `gorm:"not null;default:pending;column:verification_status" json:"verification_status"`
	AccountStatus          AccountStatus      `gorm:"not null;default:free;column:account_status" json:"account_status"`
	PremiumPlan            string             `gorm:"column:premium_plan" json:"premium_plan,omitempty"`
	PremiumExpiresAt       *time.Time         `gorm:"column:premium_expires_at" json:"premium_expires_at,omitempty"`
	SuperLikesCount        int                `gorm:"not null;default:0;column:super_likes_count" json:"super_likes_count"`
	MessageHighlightsCount int                `gorm:"not null;default:0;column:message_highlights_count" json:"message_highlights_count"`
	ProfilePhotoPath       string             `gorm:"column:profile_photo_path" json:"-"`
	Gallery                datatypes.JSON     `gorm:"column:gallery" json:"-"`
	OnboardingCompleted    bool               `gorm:"not null;default:false;column:onboarding_completed" json:"onboarding_completed"`
	IsActive               bool               `gorm:"not null;column:is_active" json:"is_active"`
	CreatedAt              time.Time          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time          `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// GalleryPaths decodes the stored gallery. A malformed column reads as empty.
func (u *User) GalleryPaths() []string {
	if len(u.Gallery) == 0 {
		return nil
	}
	var paths []string
	if err := json.Unmarshal(u.Gallery, &paths); err != nil {
		return nil
	}
	return paths
}

func (u *User) SetGalleryPaths(paths []string) error {
	raw, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	u.Gallery = datatypes.JSON(raw)
	return nil
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

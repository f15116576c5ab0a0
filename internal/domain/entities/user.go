package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User represents a user in the system
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Role     UserRole  `json:"role" gorm:"type:varchar(50);default:'member';not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null"`

	// Slack member ID used as the chat.postMessage channel
	SlackUserID *string `json:"slack_user_id,omitempty" gorm:"type:varchar(64)"`
	Timezone    string  `json:"timezone" gorm:"type:varchar(50);default:'UTC';not null"`

	// Preferences (stored as JSONB in PostgreSQL)
	NotificationPreferences datatypes.JSON `json:"notification_preferences" gorm:"type:jsonb;default:'{}'"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserRole defines user roles
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

// NotificationPreferences selects how a user wants task digests delivered
type NotificationPreferences struct {
	Email bool `json:"email"`
	Slack bool `json:"slack"`
}

// NewUser creates a new user with default values
func NewUser(email, name string) *User {
	now := time.Now()

	// Default notification preferences
	notifPrefs, _ := json.Marshal(NotificationPreferences{Email: true})

	return &User{
		ID:                      uuid.New(),
		Email:                   email,
		Name:                    name,
		Role:                    RoleMember,
		IsActive:                true,
		Timezone:                "UTC",
		NotificationPreferences: notifPrefs,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Preferences decodes NotificationPreferences, defaulting to email on bad or empty data
func (u *User) Preferences() NotificationPreferences {
	prefs := NotificationPreferences{Email: true}
	if len(u.NotificationPreferences) == 0 {
		return prefs
	}
	if err := json.Unmarshal(u.NotificationPreferences, &prefs); err != nil {
		return NotificationPreferences{Email: true}
	}
	return prefs
}

// Handle renders the user as "Name <email>"
func (u *User) Handle() string {
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrInvalidName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

package entity

import (
	"time"
)

const (
	RoleStudent  = "student"
	RoleSecurity = "security"
)

// User is the store-resident profile keyed by the Firebase Auth UID. Role is
// not self-service; it is changed through an administrative path outside this
// service.
type User struct {
	ID          string    `json:"id" firestore:"id"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	AvatarURL   string    `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Role        string    `json:"role" firestore:"role"` // "student" or "security"
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsSecurity() bool {
	return u.Role == RoleSecurity
}

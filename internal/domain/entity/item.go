package entity

import (
	"time"
)

const (
	ItemStatusLost  = "lost"
	ItemStatusFound = "found"
)

// LocationSecurityDesk is the fixed location assigned to postings made by the
// campus security role, which skips manual location entry.
const LocationSecurityDesk = "Security Desk"

// Item is a lost-or-found posting. The owner (UserID) is set once at creation;
// IsResolved only ever transitions false to true.
type Item struct {
	ID                 string    `json:"id" firestore:"id"`
	UserID             string    `json:"user_id" firestore:"userId"`
	ItemName           string    `json:"item_name" firestore:"itemName"`
	Description        string    `json:"description" firestore:"description"`
	Category           string    `json:"category" firestore:"category"`
	Location           string    `json:"location" firestore:"location"`
	ImageURL           string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	Status             string    `json:"status" firestore:"status"` // "lost" or "found", fixed at creation
	IsResolved         bool      `json:"is_resolved" firestore:"isResolved"`
	IsPostedBySecurity bool      `json:"is_posted_by_security" firestore:"isPostedBySecurity"`
	CreatedAt          time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

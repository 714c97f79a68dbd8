package entity

import (
	"sort"
	"strings"
	"time"
)

// Chat is a two-party conversation scoped to a single item. Its document ID is
// derived from the participant pair and the item, so repeated contact attempts
// about the same item always land on the same record.
type Chat struct {
	ID             string    `json:"id" firestore:"id"`
	ParticipantIDs []string  `json:"participant_ids" firestore:"participantIds"`
	ItemID         string    `json:"item_id" firestore:"itemId"`
	ItemName       string    `json:"item_name" firestore:"itemName"` // denormalized for listing
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// ChatRoomID derives the deterministic room ID for two users and an item. The
// user pair is sorted, so the result is order-independent in userA/userB.
func ChatRoomID(userA, userB, itemID string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join([]string{pair[0], pair[1], itemID}, "_")
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

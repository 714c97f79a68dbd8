package entity

import "time"

// MessageSender is the denormalized sender sub-record stored with each
// message, so conversation views render without a user lookup.
type MessageSender struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
}

// Message is one chat line. Messages are append-only; there is no edit or
// delete. The canonical store order is createdAt descending (newest first).
type Message struct {
	ID        string        `json:"id" firestore:"id"`
	ChatID    string        `json:"chat_id" firestore:"chatId"`
	Text      string        `json:"text" firestore:"text"`
	Sender    MessageSender `json:"sender" firestore:"sender"`
	CreatedAt time.Time     `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

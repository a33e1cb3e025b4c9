package entity

import "time"

// MaxMessageBytes is the largest message text accepted.
const MaxMessageBytes = 5000

// Message is one entry of a two-party conversation. The conversation key is
// derived from SenderID and RecipientID and is not stored on the message.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m Message) EntityID() string { return m.ID }

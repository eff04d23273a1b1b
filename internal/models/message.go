package models

import "time"

// Message is an append-only chat message, scoped to the authoring membership.
type Message struct {
	ID         int       `db:"id" json:"id"`
	RoomUserID int       `db:"room_user_id" json:"room_user_id"`
	Text       string    `db:"text" json:"text"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReadStatus tracks whether one user has read one message.
type ReadStatus struct {
	MessageID int  `db:"message_id" json:"message_id"`
	UserID    int  `db:"user_id" json:"user_id"`
	IsRead    bool `db:"is_read" json:"is_read"`
}

// RoomMessage is a message as rendered in a room: author resolved to a user
// and reactions aggregated. Reactions is never nil.
type RoomMessage struct {
	MessageID      int        `json:"message_id"`
	AuthorID       int        `json:"author_id"`
	AuthorUsername string     `json:"author_username"`
	Text           string     `json:"text"`
	CreatedAt      time.Time  `json:"created_at"`
	Reactions      []Reaction `json:"reactions"`
}

// RoomEvent is broadcast over websockets to room subscribers.
type RoomEvent struct {
	Type      string       `json:"type"`
	Message   *RoomMessage `json:"message,omitempty"`
	MessageID int          `json:"message_id,omitempty"`
	Reaction  *Reaction    `json:"reaction,omitempty"`
}

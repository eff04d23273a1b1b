package models

import "time"

// Room is a named chat channel.
type Room struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Membership binds one user to one room. Messages are authored through the
// membership id, not the user id directly.
type Membership struct {
	ID       int       `db:"id" json:"id"`
	UserID   int       `db:"user_id" json:"user_id"`
	RoomID   int       `db:"room_id" json:"room_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// RoomSummary is the room-list view: a room joined with the caller's unread
// count and the room's latest message time. LastActivity is nil for rooms
// that have no messages yet.
type RoomSummary struct {
	Name         string     `json:"name"`
	UnreadCount  int        `json:"unread_count"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

package models

// Emoji is an entry in the static reaction catalog.
type Emoji struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Reaction is one user's emoji reaction to one message. At most one reaction
// exists per (message, user) pair; re-reacting replaces the emoji.
type Reaction struct {
	MessageID int    `db:"message_id" json:"message_id"`
	UserID    int    `db:"user_id" json:"user_id"`
	EmojiID   int    `db:"emoji_id" json:"emoji_id"`
	EmojiName string `db:"emoji_name" json:"emoji_name"`
}

package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"room-chat-service/internal/models"
)

// ReactionRepository records emoji reactions, at most one per (message, user).
type ReactionRepository interface {
	React(ctx context.Context, messageID int, userID int, emojiID int) error
	ListEmojis(ctx context.Context) ([]models.Emoji, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// React upserts the user's reaction in one statement: a second reaction to
// the same message replaces the emoji instead of adding a row, and two
// concurrent reactions cannot both insert.
func (r *ReactionRepo) React(ctx context.Context, messageID int, userID int, emojiID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reactions (message_id, user_id, emoji_id) VALUES ($1, $2, $3)
        ON CONFLICT (message_id, user_id) DO UPDATE SET emoji_id = EXCLUDED.emoji_id`, messageID, userID, emojiID)
	return err
}

// ListEmojis returns the static reaction catalog.
func (r *ReactionRepo) ListEmojis(ctx context.Context) ([]models.Emoji, error) {
	var emojis []models.Emoji
	err := r.db.SelectContext(ctx, &emojis, `SELECT id, name FROM emojis ORDER BY id ASC`)
	return emojis, err
}

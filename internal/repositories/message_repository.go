package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"room-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	Append(ctx context.Context, membershipID int, text string) (models.Message, error)
	MostRecentMessageID(ctx context.Context, membershipID int) (int, error)
	ListForRoom(ctx context.Context, roomName string) ([]models.RoomMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append inserts a message authored through the membership. An invalid
// membership id surfaces as the storage layer's foreign-key violation.
func (r *MessageRepo) Append(ctx context.Context, membershipID int, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_user_id, text) VALUES ($1, $2) RETURNING id, room_user_id, text, created_at`, membershipID, text).
		Scan(&msg.ID, &msg.RoomUserID, &msg.Text, &msg.CreatedAt)
	return msg, err
}

// MostRecentMessageID returns the latest message authored through the
// membership, ties broken by the sequential id.
func (r *MessageRepo) MostRecentMessageID(ctx context.Context, membershipID int) (int, error) {
	var messageID int
	err := r.db.GetContext(ctx, &messageID, `SELECT id FROM messages WHERE room_user_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMessageNotFound
	}
	return messageID, err
}

// ListForRoom returns all messages in the room, oldest first, with the author
// resolved and reactions aggregated per message.
func (r *MessageRepo) ListForRoom(ctx context.Context, roomName string) ([]models.RoomMessage, error) {
	query := `SELECT m.id, u.id AS author_id, u.username, m.text, m.created_at,
            mr.user_id AS reaction_user_id, mr.emoji_id, e.name AS emoji_name
        FROM messages m
        INNER JOIN room_users ru ON ru.id = m.room_user_id
        INNER JOIN users u ON u.id = ru.user_id
        INNER JOIN rooms r ON r.id = ru.room_id
        LEFT JOIN message_reactions mr ON mr.message_id = m.id
        LEFT JOIN emojis e ON e.id = mr.emoji_id
        WHERE r.name=$1
        ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.db.QueryxContext(ctx, query, roomName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.RoomMessage
	index := map[int]int{}
	for rows.Next() {
		var (
			messageID      int
			authorID       int
			authorUsername string
			text           string
			createdAt      time.Time
			reactionUserID sql.NullInt64
			emojiID        sql.NullInt64
			emojiName      sql.NullString
		)
		if err := rows.Scan(&messageID, &authorID, &authorUsername, &text, &createdAt, &reactionUserID, &emojiID, &emojiName); err != nil {
			return nil, err
		}

		pos, ok := index[messageID]
		if !ok {
			pos = len(result)
			index[messageID] = pos
			result = append(result, models.RoomMessage{
				MessageID:      messageID,
				AuthorID:       authorID,
				AuthorUsername: authorUsername,
				Text:           text,
				CreatedAt:      createdAt,
				Reactions:      []models.Reaction{},
			})
		}
		if reactionUserID.Valid && emojiID.Valid {
			result[pos].Reactions = append(result[pos].Reactions, models.Reaction{
				MessageID: messageID,
				UserID:    int(reactionUserID.Int64),
				EmojiID:   int(emojiID.Int64),
				EmojiName: emojiName.String,
			})
		}
	}
	return result, rows.Err()
}

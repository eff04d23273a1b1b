package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"room-chat-service/internal/models"
)

// ReadStatusRepository owns per-user read tracking. Fan-out on send is the
// one invariant-bearing operation: every member present at send time gets
// exactly one status row, and the sender's row is born read.
type ReadStatusRepository interface {
	FanOutOnSend(ctx context.Context, messageID int, memberIDs []int, senderID int) error
	UnreadCountsByRoom(ctx context.Context, userID int) (map[string]int, error)
	MarkRead(ctx context.Context, messageID int, userID int, isRead bool) error
	UnreadMessageIDs(ctx context.Context, userID int, roomName string) ([]int, error)
	MostRecentActivityByRoom(ctx context.Context) (map[string]time.Time, error)
}

// ReadStatusRepo is a sqlx implementation of ReadStatusRepository.
type ReadStatusRepo struct {
	db *sqlx.DB
}

// NewReadStatusRepo constructs a ReadStatusRepo.
func NewReadStatusRepo(db *sqlx.DB) *ReadStatusRepo {
	return &ReadStatusRepo{db: db}
}

// fanOutRows builds the status rows for one sent message: one row per
// distinct member, read only for the sender.
func fanOutRows(messageID int, memberIDs []int, senderID int) []models.ReadStatus {
	seen := make(map[int]struct{}, len(memberIDs))
	rows := make([]models.ReadStatus, 0, len(memberIDs))
	for _, userID := range memberIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		rows = append(rows, models.ReadStatus{
			MessageID: messageID,
			UserID:    userID,
			IsRead:    userID == senderID,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })
	return rows
}

// FanOutOnSend writes all status rows for the message in a single
// transaction, so a failure leaves no partial delivery behind.
func (r *ReadStatusRepo) FanOutOnSend(ctx context.Context, messageID int, memberIDs []int, senderID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, row := range fanOutRows(messageID, memberIDs, senderID) {
		if _, err = tx.ExecContext(ctx, `INSERT INTO message_status (message_id, user_id, is_read) VALUES ($1, $2, $3)`, row.MessageID, row.UserID, row.IsRead); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UnreadCountsByRoom returns the user's unread count per room name. Rooms
// with nothing unread are absent from the map.
func (r *ReadStatusRepo) UnreadCountsByRoom(ctx context.Context, userID int) (map[string]int, error) {
	query := `SELECT r.name, COUNT(ms.message_id) AS unread_count
        FROM message_status ms
        INNER JOIN messages m ON m.id = ms.message_id
        INNER JOIN room_users ru ON ru.id = m.room_user_id
        INNER JOIN rooms r ON r.id = ru.room_id
        WHERE ms.user_id=$1 AND ms.is_read = FALSE
        GROUP BY r.name`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			roomName string
			count    int
		)
		if err := rows.Scan(&roomName, &count); err != nil {
			return nil, err
		}
		counts[roomName] = count
	}
	return counts, rows.Err()
}

// MarkRead flips one status row's flag. Repeating the call is a no-op.
func (r *ReadStatusRepo) MarkRead(ctx context.Context, messageID int, userID int, isRead bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE message_status SET is_read=$1 WHERE message_id=$2 AND user_id=$3`, isRead, messageID, userID)
	return err
}

// UnreadMessageIDs lists the user's unread messages in one room.
func (r *ReadStatusRepo) UnreadMessageIDs(ctx context.Context, userID int, roomName string) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT ms.message_id
        FROM message_status ms
        INNER JOIN messages m ON m.id = ms.message_id
        INNER JOIN room_users ru ON ru.id = m.room_user_id
        INNER JOIN rooms r ON r.id = ru.room_id
        WHERE ms.user_id=$1 AND ms.is_read = FALSE AND r.name=$2
        ORDER BY ms.message_id ASC`, userID, roomName)
	return ids, err
}

// MostRecentActivityByRoom returns the latest message time per room name.
// Rooms without messages are absent from the map.
func (r *ReadStatusRepo) MostRecentActivityByRoom(ctx context.Context) (map[string]time.Time, error) {
	query := `SELECT r.name, MAX(m.created_at) AS recent_msg_time
        FROM messages m
        INNER JOIN room_users ru ON ru.id = m.room_user_id
        INNER JOIN rooms r ON r.id = ru.room_id
        GROUP BY r.name`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := map[string]time.Time{}
	for rows.Next() {
		var (
			roomName string
			latest   time.Time
		)
		if err := rows.Scan(&roomName, &latest); err != nil {
			return nil, err
		}
		activity[roomName] = latest
	}
	return activity, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"room-chat-service/internal/models"
)

var ErrRoomNameTaken = errors.New("room name already taken")

// RoomRepository owns room creation and membership changes.
type RoomRepository interface {
	CreateRoom(ctx context.Context, name string, creatorID int, memberIDs []int) (models.Room, error)
	InviteUsers(ctx context.Context, roomName string, userIDs []int) error
	ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error)
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// CreateRoom creates a room and its initial memberships atomically. The
// creator is always a member; duplicate ids are collapsed.
func (r *RoomRepo) CreateRoom(ctx context.Context, name string, creatorID int, memberIDs []int) (models.Room, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var room models.Room
	if err = tx.QueryRowxContext(ctx, `INSERT INTO rooms (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			err = ErrRoomNameTaken
		}
		return models.Room{}, err
	}

	memberSet := map[int]struct{}{creatorID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]int, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO room_users (user_id, room_id) VALUES ($1, $2)`, id, room.ID); err != nil {
			return models.Room{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Room{}, err
	}
	return room, nil
}

// InviteUsers adds members to an existing room and backfills an unread
// status row for every message already in the room, all in one transaction.
// New members see the room's history as unread rather than invisible.
func (r *RoomRepo) InviteUsers(ctx context.Context, roomName string, userIDs []int) error {
	if len(userIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var roomID int
	err = tx.GetContext(ctx, &roomID, `SELECT id FROM rooms WHERE name=$1`, roomName)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrRoomNotFound
		return err
	}
	if err != nil {
		return err
	}

	var messageIDs []int
	if err = tx.SelectContext(ctx, &messageIDs, `SELECT m.id FROM messages m
        INNER JOIN room_users ru ON ru.id = m.room_user_id
        WHERE ru.room_id=$1
        ORDER BY m.id ASC`, roomID); err != nil {
		return err
	}

	seen := map[int]struct{}{}
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}

		if _, err = tx.ExecContext(ctx, `INSERT INTO room_users (user_id, room_id) VALUES ($1, $2)`, userID, roomID); err != nil {
			return err
		}
		for _, messageID := range messageIDs {
			if _, err = tx.ExecContext(ctx, `INSERT INTO message_status (message_id, user_id, is_read) VALUES ($1, $2, FALSE)`, messageID, userID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListRoomsForUser returns the rooms the user belongs to, name descending to
// match the chat-list ordering.
func (r *RoomRepo) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, `SELECT r.id, r.name, r.created_at FROM rooms r
        INNER JOIN room_users ru ON ru.room_id = r.id
        WHERE ru.user_id=$1
        ORDER BY r.name DESC`, userID)
	return rooms, err
}

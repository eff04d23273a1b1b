package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"room-chat-service/internal/models"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrMembershipNotFound = errors.New("membership not found")
)

// DirectoryRepository resolves rooms, memberships and member sets. All
// methods are pure reads; an absent row is a sentinel error, a storage fault
// is anything else.
type DirectoryRepository interface {
	ResolveMembership(ctx context.Context, userID int, roomName string) (int, error)
	ResolveRoomID(ctx context.Context, roomName string) (int, error)
	ListMembers(ctx context.Context, roomName string) ([]int, error)
	ListInvitable(ctx context.Context, roomName string) ([]models.UserRef, error)
}

// DirectoryRepo is a sqlx implementation of DirectoryRepository.
type DirectoryRepo struct {
	db *sqlx.DB
}

// NewDirectoryRepo constructs a DirectoryRepo.
func NewDirectoryRepo(db *sqlx.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

// ResolveMembership returns the membership id for a user in a named room.
func (r *DirectoryRepo) ResolveMembership(ctx context.Context, userID int, roomName string) (int, error) {
	var membershipID int
	err := r.db.GetContext(ctx, &membershipID, `SELECT ru.id FROM room_users ru
        INNER JOIN rooms r ON r.id = ru.room_id
        WHERE ru.user_id=$1 AND r.name=$2`, userID, roomName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMembershipNotFound
	}
	return membershipID, err
}

// ResolveRoomID maps a room name to its id.
func (r *DirectoryRepo) ResolveRoomID(ctx context.Context, roomName string) (int, error) {
	var roomID int
	err := r.db.GetContext(ctx, &roomID, `SELECT id FROM rooms WHERE name=$1`, roomName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRoomNotFound
	}
	return roomID, err
}

// ListMembers returns the user ids of all current members of the room. An
// unknown room yields an empty slice, not an error.
func (r *DirectoryRepo) ListMembers(ctx context.Context, roomName string) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT ru.user_id FROM room_users ru
        INNER JOIN rooms r ON r.id = ru.room_id
        WHERE r.name=$1
        ORDER BY ru.user_id ASC`, roomName)
	return ids, err
}

// ListInvitable returns every user who is not a member of the room, for the
// invitation view. Together with ListMembers it partitions the user set.
func (r *DirectoryRepo) ListInvitable(ctx context.Context, roomName string) ([]models.UserRef, error) {
	var users []models.UserRef
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.username FROM users u
        WHERE NOT EXISTS (
            SELECT 1 FROM room_users ru
            INNER JOIN rooms r ON r.id = ru.room_id
            WHERE r.name=$1 AND ru.user_id = u.id
        )
        ORDER BY u.username ASC`, roomName)
	return users, err
}

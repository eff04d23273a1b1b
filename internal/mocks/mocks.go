package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.UserRef, error) {
	args := m.Called(ctx)
	var users []models.UserRef
	if val := args.Get(0); val != nil {
		users = val.([]models.UserRef)
	}
	return users, args.Error(1)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, name string, creatorID int, memberIDs []int) (models.Room, error) {
	args := m.Called(ctx, name, creatorID, memberIDs)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) InviteUsers(ctx context.Context, roomName string, userIDs []int) error {
	args := m.Called(ctx, roomName, userIDs)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	args := m.Called(ctx, userID)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

type DirectoryRepositoryMock struct {
	mock.Mock
}

func (m *DirectoryRepositoryMock) ResolveMembership(ctx context.Context, userID int, roomName string) (int, error) {
	args := m.Called(ctx, userID, roomName)
	return args.Int(0), args.Error(1)
}

func (m *DirectoryRepositoryMock) ResolveRoomID(ctx context.Context, roomName string) (int, error) {
	args := m.Called(ctx, roomName)
	return args.Int(0), args.Error(1)
}

func (m *DirectoryRepositoryMock) ListMembers(ctx context.Context, roomName string) ([]int, error) {
	args := m.Called(ctx, roomName)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *DirectoryRepositoryMock) ListInvitable(ctx context.Context, roomName string) ([]models.UserRef, error) {
	args := m.Called(ctx, roomName)
	var users []models.UserRef
	if val := args.Get(0); val != nil {
		users = val.([]models.UserRef)
	}
	return users, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, membershipID int, text string) (models.Message, error) {
	args := m.Called(ctx, membershipID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MostRecentMessageID(ctx context.Context, membershipID int) (int, error) {
	args := m.Called(ctx, membershipID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) ListForRoom(ctx context.Context, roomName string) ([]models.RoomMessage, error) {
	args := m.Called(ctx, roomName)
	var msgs []models.RoomMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.RoomMessage)
	}
	return msgs, args.Error(1)
}

type ReadStatusRepositoryMock struct {
	mock.Mock
}

func (m *ReadStatusRepositoryMock) FanOutOnSend(ctx context.Context, messageID int, memberIDs []int, senderID int) error {
	args := m.Called(ctx, messageID, memberIDs, senderID)
	return args.Error(0)
}

func (m *ReadStatusRepositoryMock) UnreadCountsByRoom(ctx context.Context, userID int) (map[string]int, error) {
	args := m.Called(ctx, userID)
	var counts map[string]int
	if val := args.Get(0); val != nil {
		counts = val.(map[string]int)
	}
	return counts, args.Error(1)
}

func (m *ReadStatusRepositoryMock) MarkRead(ctx context.Context, messageID int, userID int, isRead bool) error {
	args := m.Called(ctx, messageID, userID, isRead)
	return args.Error(0)
}

func (m *ReadStatusRepositoryMock) UnreadMessageIDs(ctx context.Context, userID int, roomName string) ([]int, error) {
	args := m.Called(ctx, userID, roomName)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *ReadStatusRepositoryMock) MostRecentActivityByRoom(ctx context.Context) (map[string]time.Time, error) {
	args := m.Called(ctx)
	var activity map[string]time.Time
	if val := args.Get(0); val != nil {
		activity = val.(map[string]time.Time)
	}
	return activity, args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) React(ctx context.Context, messageID int, userID int, emojiID int) error {
	args := m.Called(ctx, messageID, userID, emojiID)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) ListEmojis(ctx context.Context) ([]models.Emoji, error) {
	args := m.Called(ctx)
	var emojis []models.Emoji
	if val := args.Get(0); val != nil {
		emojis = val.([]models.Emoji)
	}
	return emojis, args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.DirectoryRepository = (*DirectoryRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReadStatusRepository = (*ReadStatusRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)

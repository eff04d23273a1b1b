package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"room-chat-service/internal/mocks"
	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/ws"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/rooms/:room_name/messages", handler.GetRoomMessages)
	r.POST("/rooms/:room_name/messages", handler.PostRoomMessage)
	r.POST("/rooms/:room_name/read", handler.MarkRoomRead)
	r.POST("/rooms/:room_name/messages/:message_id/reactions", handler.React)
	r.GET("/emojis", handler.ListEmojis)
	return r
}

func TestPostRoomMessageFansOutToMembers(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	readStatus := new(mocks.ReadStatusRepositoryMock)
	handler := NewMessageHandler(directory, messages, readStatus, new(mocks.ReactionRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	messages.On("Append", mock.Anything, 11, "hi").Return(models.Message{ID: 42, RoomUserID: 11, Text: "hi"}, nil).Once()
	directory.On("ListMembers", mock.Anything, "general").Return([]int{1, 2}, nil).Once()
	readStatus.On("FanOutOnSend", mock.Anything, 42, []int{1, 2}, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	directory.AssertExpectations(t)
	messages.AssertExpectations(t)
	readStatus.AssertExpectations(t)
}

func TestPostRoomMessageNotAMember(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	handler := NewMessageHandler(directory, new(mocks.MessageRepositoryMock), new(mocks.ReadStatusRepositoryMock), new(mocks.ReactionRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(0, repositories.ErrMembershipNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	directory.AssertExpectations(t)
}

func TestPostRoomMessageFanOutFailure(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	readStatus := new(mocks.ReadStatusRepositoryMock)
	handler := NewMessageHandler(directory, messages, readStatus, new(mocks.ReactionRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	messages.On("Append", mock.Anything, 11, "hi").Return(models.Message{ID: 42}, nil).Once()
	directory.On("ListMembers", mock.Anything, "general").Return([]int{1, 2}, nil).Once()
	readStatus.On("FanOutOnSend", mock.Anything, 42, []int{1, 2}, 1).Return(assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages", bytes.NewBufferString(`{"text":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	readStatus.AssertExpectations(t)
}

func TestGetRoomMessagesSuccess(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(directory, messages, new(mocks.ReadStatusRepositoryMock), new(mocks.ReactionRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	messages.On("ListForRoom", mock.Anything, "general").Return([]models.RoomMessage{
		{MessageID: 1, AuthorID: 2, AuthorUsername: "bob", Text: "hello", Reactions: []models.Reaction{}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/general/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []models.RoomMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 1)
	require.NotNil(t, resp.Messages[0].Reactions)
	require.Empty(t, resp.Messages[0].Reactions)
	directory.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestMarkRoomReadMarksEachUnread(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	readStatus := new(mocks.ReadStatusRepositoryMock)
	handler := NewMessageHandler(directory, new(mocks.MessageRepositoryMock), readStatus, new(mocks.ReactionRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	readStatus.On("UnreadMessageIDs", mock.Anything, 1, "general").Return([]int{4, 7}, nil).Once()
	readStatus.On("MarkRead", mock.Anything, 4, 1, true).Return(nil).Once()
	readStatus.On("MarkRead", mock.Anything, 7, 1, true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp["marked_read"])
	readStatus.AssertExpectations(t)
}

func TestReactUpsertsSingleReaction(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	reactions := new(mocks.ReactionRepositoryMock)
	handler := NewMessageHandler(directory, new(mocks.MessageRepositoryMock), new(mocks.ReadStatusRepositoryMock), reactions, ws.NewHub(), nil)
	router := setupMessageRouter(handler)

	// reacting twice with different emojis drives two upserts against the
	// same (message, user) pair; the repository keeps the last one
	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Twice()
	reactions.On("React", mock.Anything, 42, 1, 1).Return(nil).Once()
	reactions.On("React", mock.Anything, 42, 1, 2).Return(nil).Once()

	for _, body := range []string{`{"emoji_id":1}`, `{"emoji_id":2}`} {
		req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages/42/reactions", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	directory.AssertExpectations(t)
	reactions.AssertExpectations(t)
}

func TestReactInvalidMessageID(t *testing.T) {
	handler := NewMessageHandler(new(mocks.DirectoryRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.ReadStatusRepositoryMock), new(mocks.ReactionRepositoryMock), nil, nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages/abc/reactions", bytes.NewBufferString(`{"emoji_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmojis(t *testing.T) {
	reactions := new(mocks.ReactionRepositoryMock)
	handler := NewMessageHandler(new(mocks.DirectoryRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.ReadStatusRepositoryMock), reactions, nil, nil)
	router := setupMessageRouter(handler)

	reactions.On("ListEmojis", mock.Anything).Return([]models.Emoji{{ID: 1, Name: "smile"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/emojis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reactions.AssertExpectations(t)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"room-chat-service/internal/mocks"
	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
)

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/rooms", handler.ListRooms)
	r.POST("/rooms", handler.CreateRoom)
	r.POST("/rooms/:room_name/invite", handler.InviteUsers)
	r.GET("/rooms/:room_name/members", handler.ListMembers)
	r.GET("/rooms/:room_name/invitable", handler.ListInvitable)
	return r
}

func TestListRoomsJoinsUnreadAndActivity(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	readStatus := new(mocks.ReadStatusRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.DirectoryRepositoryMock), readStatus, nil)
	router := setupRoomRouter(handler)

	latest := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	roomRepo.On("ListRoomsForUser", mock.Anything, 1).Return([]models.Room{{ID: 1, Name: "general"}, {ID: 2, Name: "empty"}}, nil).Once()
	readStatus.On("UnreadCountsByRoom", mock.Anything, 1).Return(map[string]int{"general": 3}, nil).Once()
	readStatus.On("MostRecentActivityByRoom", mock.Anything).Return(map[string]time.Time{"general": latest}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rooms []models.RoomSummary `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rooms, 2)
	require.Equal(t, 3, resp.Rooms[0].UnreadCount)
	require.NotNil(t, resp.Rooms[0].LastActivity)
	require.True(t, resp.Rooms[0].LastActivity.Equal(latest))
	// rooms with no unread and no messages come back zeroed, not missing
	require.Equal(t, 0, resp.Rooms[1].UnreadCount)
	require.Nil(t, resp.Rooms[1].LastActivity)

	roomRepo.AssertExpectations(t)
	readStatus.AssertExpectations(t)
}

func TestCreateRoomSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.DirectoryRepositoryMock), new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("CreateRoom", mock.Anything, "general", 1, []int{2, 3}).Return(models.Room{ID: 5, Name: "general"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":"general","member_ids":[2,3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomNameTaken(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, new(mocks.DirectoryRepositoryMock), new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	roomRepo.On("CreateRoom", mock.Anything, "general", 1, []int(nil)).Return(models.Room{}, repositories.ErrRoomNameTaken).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":"general"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomInvalidBody(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), new(mocks.DirectoryRepositoryMock), new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString(`{"name":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInviteUsersSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	directory := new(mocks.DirectoryRepositoryMock)
	handler := NewRoomHandler(roomRepo, directory, new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	roomRepo.On("InviteUsers", mock.Anything, "general", []int{4, 5}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/invite", bytes.NewBufferString(`{"user_ids":[4,5]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	roomRepo.AssertExpectations(t)
	directory.AssertExpectations(t)
}

func TestInviteUsersNotAMember(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), directory, new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(0, repositories.ErrMembershipNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/invite", bytes.NewBufferString(`{"user_ids":[4]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	directory.AssertExpectations(t)
}

func TestListMembersRepoError(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), directory, new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	directory.On("ListMembers", mock.Anything, "general").Return(([]int)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/general/members", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	directory.AssertExpectations(t)
}

func TestListInvitableSuccess(t *testing.T) {
	directory := new(mocks.DirectoryRepositoryMock)
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), directory, new(mocks.ReadStatusRepositoryMock), nil)
	router := setupRoomRouter(handler)

	directory.On("ResolveMembership", mock.Anything, 1, "general").Return(11, nil).Once()
	directory.On("ListInvitable", mock.Anything, "general").Return([]models.UserRef{{ID: 9, Username: "carol"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms/general/invitable", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	directory.AssertExpectations(t)
}

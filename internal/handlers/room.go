package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
)

// RoomHandler manages room listing, creation and membership endpoints.
type RoomHandler struct {
	roomRepo   repositories.RoomRepository
	directory  repositories.DirectoryRepository
	readStatus repositories.ReadStatusRepository
	audit      *telemetry.AuditEmitter
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(roomRepo repositories.RoomRepository, directory repositories.DirectoryRepository, readStatus repositories.ReadStatusRepository, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{
		roomRepo:   roomRepo,
		directory:  directory,
		readStatus: readStatus,
		audit:      audit,
	}
}

// ListRooms returns the caller's rooms joined with unread counts and the
// latest message time per room.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := c.GetInt("userID")

	rooms, err := h.roomRepo.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	unread, err := h.readStatus.UnreadCountsByRoom(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load unread counts"})
		return
	}

	activity, err := h.readStatus.MostRecentActivityByRoom(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room activity"})
		return
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := models.RoomSummary{Name: room.Name, UnreadCount: unread[room.Name]}
		if latest, ok := activity[room.Name]; ok {
			t := latest
			summary.LastActivity = &t
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

// CreateRoom handles POST /rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Name      string `json:"name" binding:"required,min=1,max=60"`
		MemberIDs []int  `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomRepo.CreateRoom(c.Request.Context(), req.Name, userID, req.MemberIDs)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "room name already taken"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	h.emitAudit(c, "INFO", "Room created")
	c.JSON(http.StatusCreated, gin.H{"room_id": room.ID, "name": room.Name})
}

// InviteUsers adds users to a room the caller belongs to. Invited members
// inherit the room's existing history as unread.
func (h *RoomHandler) InviteUsers(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	if !h.requireMembership(c, userID, roomName) {
		return
	}

	var req struct {
		UserIDs []int `json:"user_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomRepo.InviteUsers(c.Request.Context(), roomName, req.UserIDs); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not invite users"})
		return
	}

	h.emitAudit(c, "INFO", "Users invited to room")
	c.Status(http.StatusNoContent)
}

// ListMembers returns the user ids of the room's members.
func (h *RoomHandler) ListMembers(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	if !h.requireMembership(c, userID, roomName) {
		return
	}

	members, err := h.directory.ListMembers(c.Request.Context(), roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_ids": members})
}

// ListInvitable returns the users who are not yet members of the room.
func (h *RoomHandler) ListInvitable(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	if !h.requireMembership(c, userID, roomName) {
		return
	}

	users, err := h.directory.ListInvitable(c.Request.Context(), roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invitable users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *RoomHandler) requireMembership(c *gin.Context, userID int, roomName string) bool {
	_, err := h.directory.ResolveMembership(c.Request.Context(), userID, roomName)
	if errors.Is(err, repositories.ErrMembershipNotFound) {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return false
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	return true
}

func (h *RoomHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

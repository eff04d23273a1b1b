package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

// MessageHandler manages message and reaction endpoints.
type MessageHandler struct {
	directory  repositories.DirectoryRepository
	messages   repositories.MessageRepository
	readStatus repositories.ReadStatusRepository
	reactions  repositories.ReactionRepository
	hub        *ws.Hub
	audit      *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(directory repositories.DirectoryRepository, messages repositories.MessageRepository, readStatus repositories.ReadStatusRepository, reactions repositories.ReactionRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		directory:  directory,
		messages:   messages,
		readStatus: readStatus,
		reactions:  reactions,
		hub:        hub,
		audit:      audit,
	}
}

// GetRoomMessages returns the room's messages, oldest first, with reactions.
func (h *MessageHandler) GetRoomMessages(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	if !h.requireMembership(c, userID, roomName) {
		return
	}

	msgs, err := h.messages.ListForRoom(c.Request.Context(), roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostRoomMessage appends a message and fans out one read-status row per
// current room member, the sender's pre-marked read.
func (h *MessageHandler) PostRoomMessage(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membershipID, err := h.directory.ResolveMembership(c.Request.Context(), userID, roomName)
	if errors.Is(err, repositories.ErrMembershipNotFound) {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return
	}
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), membershipID, req.Text)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	members, err := h.directory.ListMembers(c.Request.Context(), roomName)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}

	if err := h.readStatus.FanOutOnSend(c.Request.Context(), msg.ID, members, userID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record delivery"})
		return
	}

	observability.IncMessagesSent(roomName)
	observability.AddFanOutRows(len(members))

	roomMsg := models.RoomMessage{
		MessageID: msg.ID,
		AuthorID:  userID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		Reactions: []models.Reaction{},
	}
	if h.hub != nil {
		h.hub.BroadcastMessage(roomName, roomMsg)
	}

	h.emitAudit(c, "INFO", "Message sent")
	c.JSON(http.StatusCreated, roomMsg)
}

// MarkRoomRead marks every currently-unread message in the room as read for
// the caller.
func (h *MessageHandler) MarkRoomRead(c *gin.Context) {
	roomName := c.Param("room_name")
	userID := c.GetInt("userID")

	if !h.requireMembership(c, userID, roomName) {
		return
	}

	ids, err := h.readStatus.UnreadMessageIDs(c.Request.Context(), userID, roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load unread messages"})
		return
	}

	for _, messageID := range ids {
		if err := h.readStatus.MarkRead(c.Request.Context(), messageID, userID, true); err != nil {
			h.emitAudit(c, "ERROR", "internal error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": len(ids)})
}

// React records the caller's emoji reaction; re-reacting replaces the emoji.
func (h *MessageHandler) React(c *gin.Context) {
	roomName := c.Param("room_name")
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt("userID")
	if !h.requireMembership(c, userID, roomName) {
		return
	}

	var req struct {
		EmojiID int `json:"emoji_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reactions.React(c.Request.Context(), messageID, userID, req.EmojiID); err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record reaction"})
		return
	}

	observability.IncReaction()

	reaction := models.Reaction{MessageID: messageID, UserID: userID, EmojiID: req.EmojiID}
	if h.hub != nil {
		h.hub.BroadcastReaction(roomName, reaction)
	}

	h.emitAudit(c, "INFO", "Reaction recorded")
	c.JSON(http.StatusOK, reaction)
}

// ListEmojis returns the reaction catalog.
func (h *MessageHandler) ListEmojis(c *gin.Context) {
	emojis, err := h.reactions.ListEmojis(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load emojis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"emojis": emojis})
}

func (h *MessageHandler) requireMembership(c *gin.Context, userID int, roomName string) bool {
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

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

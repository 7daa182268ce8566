package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"arena-chat-service/internal/api/middleware"
	"arena-chat-service/internal/models"
	"arena-chat-service/internal/presence"
	"arena-chat-service/internal/store"
)

type FriendHandler struct {
	friends     store.FriendStore
	users       store.UserStore
	notifs      store.NotificationStore
	broadcaster *presence.Broadcaster
}

func NewFriendHandler(
	friends store.FriendStore,
	users store.UserStore,
	notifs store.NotificationStore,
	broadcaster *presence.Broadcaster,
) *FriendHandler {
	return &FriendHandler{friends: friends, users: users, notifs: notifs, broadcaster: broadcaster}
}

type createFriendRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
}

// Create records a pending friend request and pushes the event to the
// recipient's friend_requests channel. An offline recipient still gets
// the stored notification later.
func (h *FriendHandler) Create(c *gin.Context) {
	identity := middleware.Identity(c)

	var req createFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toUserId is required"})
		return
	}
	if req.ToUserID == identity.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetUserByID(ctx, req.ToUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		slog.Error("friend request target lookup failed", "toUserID", req.ToUserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "friend request failed"})
		return
	}

	fr, err := h.friends.CreateFriendRequest(ctx, identity.UserID, req.ToUserID)
	if err != nil {
		slog.Error("friend request create failed", "fromUserID", identity.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "friend request failed"})
		return
	}

	if _, err := h.notifs.CreateNotification(ctx, fr.ToUserID, "friend_request",
		identity.DisplayName+" sent you a friend request", ""); err != nil {
		slog.Warn("friend request notification record failed", "requestID", fr.ID, "error", err)
	}
	h.broadcaster.FriendRequestReceived(fr, identity.DisplayName)

	c.JSON(http.StatusCreated, fr)
}

// Accept flips a pending request to accepted. Only the recipient may
// answer it.
func (h *FriendHandler) Accept(c *gin.Context) {
	h.answer(c, models.FriendStatusAccepted)
}

// Reject flips a pending request to rejected. Only the recipient may
// answer it.
func (h *FriendHandler) Reject(c *gin.Context) {
	h.answer(c, models.FriendStatusRejected)
}

func (h *FriendHandler) answer(c *gin.Context, status string) {
	identity := middleware.Identity(c)
	requestID := c.Param("id")
	ctx := c.Request.Context()

	fr, err := h.friends.GetFriendRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "friend request not found"})
			return
		}
		slog.Error("friend request lookup failed", "requestID", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "friend request failed"})
		return
	}

	if fr.ToUserID != identity.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your friend request"})
		return
	}
	if fr.Status != models.FriendStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "friend request already answered"})
		return
	}

	fr, err = h.friends.UpdateFriendRequestStatus(ctx, requestID, status)
	if err != nil {
		slog.Error("friend request update failed", "requestID", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "friend request failed"})
		return
	}

	switch status {
	case models.FriendStatusAccepted:
		h.broadcaster.FriendRequestAccepted(fr, identity.DisplayName)
	case models.FriendStatusRejected:
		h.broadcaster.FriendRequestRejected(fr, identity.DisplayName)
	}

	c.JSON(http.StatusOK, fr)
}

// Package handlers holds the HTTP and websocket entry points.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"arena-chat-service/internal/models"
	"arena-chat-service/internal/session"
	"arena-chat-service/internal/store"
)

type AuthHandler struct {
	users store.UserStore
	gate  *session.Gate
}

func NewAuthHandler(users store.UserStore, gate *session.Gate) *AuthHandler {
	return &AuthHandler{users: users, gate: gate}
}

// Login exchanges email+password for a signed token the websocket gate
// accepts. Unknown email and wrong password return the same answer.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		slog.Error("login lookup failed", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.gate.Issue(session.Identity{
		UserID:      user.ID,
		DisplayName: user.Username,
		Role:        session.Role(user.Role),
	})
	if err != nil {
		slog.Error("token mint failed", "userID", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	})
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"arena-chat-service/internal/chat"
	"arena-chat-service/internal/events"
	"arena-chat-service/internal/presence"
	"arena-chat-service/internal/registry"
	"arena-chat-service/internal/room"
	"arena-chat-service/internal/session"
	"arena-chat-service/internal/store"
	"arena-chat-service/internal/transport"
)

// WSHandler is the connection lifecycle entry point: authenticate,
// register, pump commands, tear down.
type WSHandler struct {
	gate     *session.Gate
	reg      *registry.Registry
	manager  *transport.Manager
	router   *room.Router
	chat     *chat.Handler
	presence *presence.Broadcaster
}

func NewWSHandler(
	gate *session.Gate,
	reg *registry.Registry,
	manager *transport.Manager,
	router *room.Router,
	chatHandler *chat.Handler,
	broadcaster *presence.Broadcaster,
) *WSHandler {
	return &WSHandler{
		gate:     gate,
		reg:      reg,
		manager:  manager,
		router:   router,
		chat:     chatHandler,
		presence: broadcaster,
	}
}

// HandleWebSocket upgrades an authenticated connection. Authentication
// strictly precedes registration: a socket that fails the gate never
// reaches the registry and can never join a room.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	identity, err := h.gate.Authenticate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ws, err := transport.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", identity.UserID, "error", err)
		return
	}

	conn := transport.NewConn(ws, identity.UserID, h.frameHandler(identity), h.closeHandler)
	h.manager.Add(conn)

	first := h.reg.AddConnection(identity.UserID, conn.ID(), identity.DisplayName)

	// Every session listens on its own notification and friend-request
	// channels; chat rooms are joined by explicit command.
	for _, kind := range []string{room.KindNotifications, room.KindFriendRequests} {
		if err := h.router.Join(conn.ID(), room.Channel(kind, identity.UserID)); err != nil {
			slog.Warn("personal channel join failed", "socketID", conn.ID(), "kind", kind, "error", err)
		}
	}

	if first {
		h.presence.UserOnline(identity.UserID)
	}

	conn.Start()
	slog.Info("websocket connected", "socketID", conn.ID(), "userID", identity.UserID)
}

func (h *WSHandler) frameHandler(identity session.Identity) transport.FrameHandler {
	return func(socketID string, raw []byte) {
		cmd, err := events.DecodeCommand(raw)
		if err != nil {
			h.manager.Deliver(socketID, events.NewError("INVALID_COMMAND", err.Error()))
			return
		}

		if err := h.dispatch(socketID, identity, cmd); err != nil {
			// Exactly one error event, to the issuing socket only. The
			// session stays usable.
			h.manager.Deliver(socketID, events.NewError(errorCode(err), err.Error()))
		}
	}
}

func (h *WSHandler) dispatch(socketID string, identity session.Identity, cmd events.Command) error {
	ctx := context.Background()

	switch cmd.Action {
	case events.ActionJoin:
		jc, err := cmd.DecodeJoin()
		if err != nil {
			return err
		}
		return h.chat.Join(socketID, jc.RoomID)

	case events.ActionLeave:
		jc, err := cmd.DecodeJoin()
		if err != nil {
			return err
		}
		return h.chat.Leave(socketID, jc.RoomID)

	case events.ActionSend:
		sc, err := cmd.DecodeSend()
		if err != nil {
			return err
		}
		userID := identity.UserID
		_, err = h.chat.Send(ctx, chat.SendInput{
			RoomID:   sc.RoomID,
			AuthorID: &userID,
			Body:     sc.Body,
			ReplyTo:  sc.ReplyTo,
			URL:      sc.URL,
			FileName: sc.FileName,
		})
		return err

	case events.ActionEdit:
		ec, err := cmd.DecodeEdit()
		if err != nil {
			return err
		}
		_, err = h.chat.Edit(ctx, ec.MessageID, ec.RoomID, ec.Body, identity)
		return err

	case events.ActionDelete:
		dc, err := cmd.DecodeDelete()
		if err != nil {
			return err
		}
		return h.chat.Delete(ctx, dc.MessageID, dc.RoomID, identity)

	case events.ActionTyping:
		tc, err := cmd.DecodeTyping()
		if err != nil {
			return err
		}
		return h.chat.Typing(tc.RoomID, identity.UserID, tc.IsTyping)
	}

	return nil
}

// closeHandler treats a closed transport identically to an explicit
// remove: idempotent, so a duplicate disconnect signal is harmless.
func (h *WSHandler) closeHandler(socketID string) {
	h.manager.Remove(socketID)

	userID, _, last := h.reg.RemoveConnection(socketID)
	if userID == "" {
		return
	}
	if last {
		h.presence.UserOffline(userID)
	}
	slog.Info("websocket disconnected", "socketID", socketID, "userID", userID, "lastSocket", last)
}

func errorCode(err error) string {
	var vErr *chat.ValidationError
	var sErr *store.StorageError
	switch {
	case errors.As(err, &vErr):
		return "VALIDATION"
	case errors.Is(err, chat.ErrForbidden):
		return "FORBIDDEN"
	case errors.As(err, &sErr):
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arena-chat-service/internal/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 4096

	// Outbound buffer per socket; overflow closes the connection
	sendBuffer = 256
)

var ErrConnClosed = errors.New("connection closed")

// FrameHandler receives each raw client frame off the read pump.
type FrameHandler func(socketID string, raw []byte)

// CloseHandler fires exactly once when the connection tears down.
type CloseHandler func(socketID string)

// Conn is one live websocket connection: a read pump feeding frames to
// the handler and a write pump draining the buffered send channel.
type Conn struct {
	id     string
	userID string
	ws     *websocket.Conn
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	closed int32

	onFrame FrameHandler
	onClose CloseHandler
}

func NewConn(ws *websocket.Conn, userID string, onFrame FrameHandler, onClose CloseHandler) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		id:      uuid.New().String(),
		userID:  userID,
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		onFrame: onFrame,
		onClose: onClose,
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) UserID() string {
	return c.userID
}

// Start launches the read and write pumps.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// Deliver enqueues an event for this socket. Best-effort: a full buffer
// closes the connection rather than blocking the broadcaster.
func (c *Conn) Deliver(env events.Envelope) error {
	if c.isClosed() {
		return ErrConnClosed
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.ctx.Done():
		return ErrConnClosed
	default:
		slog.Warn("send buffer full, closing socket", "socketID", c.id, "userID", c.userID)
		c.Close()
		return ErrConnClosed
	}
}

// Close is idempotent; the read pump's teardown path calls it too.
func (c *Conn) Close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
	}
}

func (c *Conn) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Conn) readPump() {
	defer func() {
		c.Close()
		if err := c.ws.Close(); err != nil {
			slog.Debug("error closing connection", "socketID", c.id, "error", err)
		}
		if c.onClose != nil {
			c.onClose(c.id)
		}
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket error", "socketID", c.id, "userID", c.userID, "error", err)
			} else {
				slog.Debug("websocket closed", "socketID", c.id, "userID", c.userID, "error", err)
			}
			return
		}

		if c.onFrame != nil {
			c.onFrame(c.id, raw)
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("error writing message", "socketID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("error sending ping", "socketID", c.id, "error", err)
				return
			}

		case <-c.ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

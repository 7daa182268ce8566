package room

import (
	"fmt"

	"arena-chat-service/internal/registry"
)

// Subscriber is the transport-level subscribe primitive. Deliveries are
// fire-and-forget elsewhere; subscription itself can fail (for example
// when the socket closed between command receipt and processing).
type Subscriber interface {
	Subscribe(socketID, roomID string) error
	Unsubscribe(socketID, roomID string) error
}

// Router performs joins and leaves as one unit against both the
// transport and the registry. If the transport subscribe fails, the
// registry is never touched, so the two can not diverge.
type Router struct {
	reg *registry.Registry
	sub Subscriber
}

func NewRouter(reg *registry.Registry, sub Subscriber) *Router {
	return &Router{reg: reg, sub: sub}
}

func (rt *Router) Join(socketID, roomID string) error {
	if err := rt.sub.Subscribe(socketID, roomID); err != nil {
		return fmt.Errorf("subscribe %s to %s: %w", socketID, roomID, err)
	}
	rt.reg.JoinRoom(socketID, roomID)
	return nil
}

func (rt *Router) Leave(socketID, roomID string) error {
	rt.reg.LeaveRoom(socketID, roomID)
	if err := rt.sub.Unsubscribe(socketID, roomID); err != nil {
		return fmt.Errorf("unsubscribe %s from %s: %w", socketID, roomID, err)
	}
	return nil
}

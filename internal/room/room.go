// Package room derives canonical room identifiers and keeps transport
// subscriptions and registry membership moving in lockstep.
package room

import "strings"

// Per-user channel kinds. Each is single-subscriber-domain but may have
// many sockets behind it (one per device).
const (
	KindNotifications  = "notifications"
	KindFriendRequests = "friend_requests"
	KindPresence       = "presence"
)

// Team returns the room id for a team chat.
func Team(teamID string) string {
	return "team:" + teamID
}

// Private returns the room id for a pairwise conversation. The two user
// ids are sorted so both parties derive the same id regardless of who
// initiates.
func Private(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return "private:" + userA + ":" + userB
}

// Channel returns the per-user channel id for the given kind.
func Channel(kind, userID string) string {
	return kind + ":" + userID
}

package repository

import "github.com/google/uuid"

// Persisted layout in the shared store: a hash per player, two room lists,
// a member list and a ready set per room, and the room-sequence counter.
const (
	roomSeqKey      = "rooms:seq"
	stagedListKey   = "rooms:staged"
	playingListKey  = "rooms:playing"
	playerKeyPrefix = "player:"
)

func playerKey(id uuid.UUID) string {
	return playerKeyPrefix + id.String()
}

func membersKey(room string) string {
	return "room:" + room + ":members"
}

func readyKey(room string) string {
	return "room:" + room + ":ready"
}

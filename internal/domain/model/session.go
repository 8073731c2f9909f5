package model

import "github.com/google/uuid"

// SessionState — lifecycle of a single connection inside the matchmaking
// state machine.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateRegistered
	StateQueued
	StateInRoom
	StateReadyPending
	StateInGame
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRegistered:
		return "registered"
	case StateQueued:
		return "queued"
	case StateInRoom:
		return "in_room"
	case StateReadyPending:
		return "ready_pending"
	case StateInGame:
		return "in_game"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session — per-connection view of one player's progress through matchmaking.
// The authoritative room membership lives in the shared store; the session
// only carries identity and the local state machine position.
type Session struct {
	PlayerID uuid.UUID
	Username string
	State    SessionState
}

func NewSession(playerID uuid.UUID, username string) *Session {
	return &Session{
		PlayerID: playerID,
		Username: username,
		State:    StateUnauthenticated,
	}
}

package model

import "github.com/google/uuid"

// Player — matchmaking record for one connected player. The Room field is a
// back-reference to the room whose member list contains this player; every
// mutation of one side updates the other in the same atomic unit.
type Player struct {
	ID       uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Room     string    `json:"room"`
	Ready    bool      `json:"ready"`
}

func NewPlayer(id uuid.UUID, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
	}
}

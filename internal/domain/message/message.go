package message

import (
	"matchhub/internal/domain/model"

	"github.com/google/uuid"
)

// Event — structure for WebSocket messages
type Event struct {
	Type            string         `json:"type"`
	UserID          uuid.UUID      `json:"user_id,omitempty"`
	Username        string         `json:"username,omitempty"`
	AllPlayers      []model.Player `json:"all_players,omitempty"`
	TotalReadyCount int            `json:"total_ready_count,omitempty"`
	Message         string         `json:"message,omitempty"`
}

func NewPlayerEvent(playerID uuid.UUID, username string, all []model.Player) *Event {
	return &Event{
		Type:       MsgTypeNewPlayer,
		UserID:     playerID,
		Username:   username,
		AllPlayers: all,
	}
}

func NewLeaveEvent(playerID uuid.UUID, username string) *Event {
	return &Event{Type: MsgTypeLeave, UserID: playerID, Username: username}
}

func NewGameStartEvent() *Event {
	return &Event{Type: MsgTypeGameStart}
}

func NewReadyAnnouncement(playerID uuid.UUID, username string, total int) *Event {
	return &Event{
		Type:            MsgTypeReadyAnnouncement,
		UserID:          playerID,
		Username:        username,
		TotalReadyCount: total,
	}
}

func NewGameEndedEvent() *Event {
	return &Event{Type: MsgTypeGameEnded}
}

func NewErrorMessage(message string) *Event {
	return &Event{Type: MsgTypeError, Message: message}
}

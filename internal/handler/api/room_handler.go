package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"matchhub/internal/infrastructure/repository"
)

type RoomHandler struct {
	rooms repository.RoomRepository
}

func NewRoomHandler(rooms repository.RoomRepository) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// RoomsList — point-in-time snapshot of the two room lists
func (rh *RoomHandler) RoomsList(w http.ResponseWriter, r *http.Request) {
	staged, err := rh.rooms.StagedRooms(r.Context())
	if err != nil {
		slog.Error("load staged rooms", "error", err)
		http.Error(w, "load rooms", http.StatusInternalServerError)
		return
	}
	playing, err := rh.rooms.PlayingRooms(r.Context())
	if err != nil {
		slog.Error("load playing rooms", "error", err)
		http.Error(w, "load rooms", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"staged":  staged,
		"playing": playing,
	})
}

package repository

import (
	"log/slog"
	"sync"

	"matchhub/internal/domain/errors"
	"matchhub/internal/domain/message"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WsConnectionsRepository interface {
	Conn(playerID uuid.UUID) (*websocket.Conn, error)
	Add(playerID uuid.UUID, conn *websocket.Conn)
	Remove(playerID uuid.UUID)
	// Broadcast delivers the event to every listed player with a live
	// connection; players without one are skipped.
	Broadcast(playerIDs []uuid.UUID, event *message.Event)
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer per conn
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(v)
}

type WsConnRepo struct {
	store map[uuid.UUID]*wsClient
	mu    sync.RWMutex
}

func NewWsConnRepo() *WsConnRepo {
	return &WsConnRepo{store: make(map[uuid.UUID]*wsClient)}
}

func (w *WsConnRepo) Conn(playerID uuid.UUID) (*websocket.Conn, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	client, ok := w.store[playerID]
	if !ok {
		return nil, errors.ErrConnNotFound
	}

	return client.conn, nil
}

func (w *WsConnRepo) Add(playerID uuid.UUID, conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.store[playerID] = &wsClient{conn: conn}
}

func (w *WsConnRepo) Remove(playerID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.store, playerID)
}

func (w *WsConnRepo) Broadcast(playerIDs []uuid.UUID, event *message.Event) {
	for _, id := range playerIDs {
		w.mu.RLock()
		client, ok := w.store[id]
		w.mu.RUnlock()
		if !ok {
			continue
		}

		if err := client.writeJSON(event); err != nil {
			slog.Error("broadcast event", "type", event.Type, "playerID", id, "error", err)
		}
	}
}

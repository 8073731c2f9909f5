package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"matchhub/internal/constant"
	"matchhub/internal/domain/message"
	"matchhub/internal/domain/model"
	"matchhub/internal/infrastructure/repository"
	"matchhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WsHandler struct {
	upgrader   websocket.Upgrader
	matchmaker usecase.MatchmakingUsecase
	users      repository.UserRepository
	wsConnRepo repository.WsConnectionsRepository
}

func NewWsHandler(
	matchmaker usecase.MatchmakingUsecase,
	users repository.UserRepository,
	wsConnRepo repository.WsConnectionsRepository,
) *WsHandler {
	return &WsHandler{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: time.Second * 5,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // TODO поменять при выкатке
			},
			EnableCompression: true,
		},
		matchmaker: matchmaker,
		users:      users,
		wsConnRepo: wsConnRepo,
	}
}

// HandleWS — handle WebSocket connections. Auth middleware has already
// validated the credential; an unknown user id still terminates here before
// any matchmaking state is created.
func (wh *WsHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := constant.GetUserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	user, err := wh.users.UserByID(r.Context(), userID)
	if err != nil {
		slog.Error("lookup user for connect", "userID", userID, "error", err)
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	conn, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("upgrade to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	// The request context dies with the handshake response; event handling
	// and disconnect cleanup outlive it.
	ctx := context.Background()

	session, err := wh.matchmaker.Connect(ctx, userID, user.Username)
	if err != nil {
		slog.Error("connect player", "userID", userID, "error", err)
		return
	}
	wh.wsConnRepo.Add(userID, conn)

	// Cleanup runs unconditionally, including after store failures
	// mid-session.
	defer func() {
		wh.wsConnRepo.Remove(userID)
		if err := wh.matchmaker.Disconnect(ctx, session); err != nil {
			slog.Error("disconnect cleanup", "playerID", userID, "error", err)
		}
	}()

	// Main message loop
	for {
		var msg message.Event
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Error("read message", "error", err)
			}
			break
		}

		if err := wh.dispatch(ctx, session, &msg); err != nil {
			// StoreUnavailable: treat as disconnect for cleanup purposes
			slog.Error("handle event", "type", msg.Type, "playerID", userID, "error", err)
			break
		}
	}
}

func (wh *WsHandler) dispatch(ctx context.Context, session *model.Session, msg *message.Event) error {
	switch msg.Type {
	case message.MsgTypePairMe:
		return wh.matchmaker.Pair(ctx, session)
	case message.MsgTypePlayerReady:
		return wh.matchmaker.Ready(ctx, session)
	case message.MsgTypePlayerLeave:
		return wh.matchmaker.Leave(ctx, session)
	case message.MsgTypeEndGameNotification:
		return wh.matchmaker.EndGame(ctx, session)
	default:
		wh.wsConnRepo.Broadcast(
			[]uuid.UUID{session.PlayerID},
			message.NewErrorMessage("unknown event type: "+msg.Type),
		)
		return nil
	}
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"matchhub/internal/domain/message"
	"matchhub/internal/domain/model"
	"matchhub/internal/infrastructure/lock"
	"matchhub/internal/infrastructure/repository"

	"github.com/google/uuid"
)

// Notifier delivers outbound events to room members. Satisfied by the ws
// connections repository in production and by a recorder in tests.
type Notifier interface {
	Broadcast(playerIDs []uuid.UUID, event *message.Event)
}

type MatchmakingUsecase interface {
	Connect(ctx context.Context, userID uuid.UUID, username string) (*model.Session, error)
	Pair(ctx context.Context, s *model.Session) error
	Ready(ctx context.Context, s *model.Session) error
	Leave(ctx context.Context, s *model.Session) error
	Disconnect(ctx context.Context, s *model.Session) error
	EndGame(ctx context.Context, s *model.Session) error
}

// MatchmakingUC — the per-connection state machine driving registry,
// directory and locks. Every handler is synchronous; the only suspension
// points are the two semaphores and the shared-store round trips.
type MatchmakingUC struct {
	players  repository.PlayerRepository
	rooms    repository.RoomRepository
	locks    lock.Provider
	notifier Notifier

	maxPlayers int
	minReady   int
}

func NewMatchmakingUC(
	players repository.PlayerRepository,
	rooms repository.RoomRepository,
	locks lock.Provider,
	notifier Notifier,
	maxPlayers, minReady int,
) *MatchmakingUC {
	return &MatchmakingUC{
		players:    players,
		rooms:      rooms,
		locks:      locks,
		notifier:   notifier,
		maxPlayers: maxPlayers,
		minReady:   minReady,
	}
}

// Connect creates the player record for an authenticated connection.
func (uc *MatchmakingUC) Connect(ctx context.Context, userID uuid.UUID, username string) (*model.Session, error) {
	if err := uc.players.Register(ctx, model.NewPlayer(userID, username)); err != nil {
		return nil, fmt.Errorf("register player: %w", err)
	}

	s := model.NewSession(userID, username)
	s.State = model.StateRegistered
	slog.Info("player connected", "playerID", userID, "username", username)
	return s, nil
}

// Pair places the player into an available staged room. A request from a
// player with stale multi-room membership is a protocol violation and is
// ignored. A join that loses the capacity recheck is dropped silently; the
// client re-issues pair_me.
func (uc *MatchmakingUC) Pair(ctx context.Context, s *model.Session) error {
	if _, err := uc.resync(ctx, s); err != nil {
		return err
	}
	if s.State == model.StateInGame || s.State == model.StateClosed {
		slog.Warn("pair request in illegal state ignored",
			"playerID", s.PlayerID, "state", s.State)
		return nil
	}

	occupied, err := uc.rooms.RoomsByPlayer(ctx, s.PlayerID)
	if err != nil {
		return fmt.Errorf("lookup rooms for player: %w", err)
	}
	if len(occupied) > 1 {
		slog.Warn("pair request from multiply-joined player ignored",
			"playerID", s.PlayerID, "rooms", occupied)
		return nil
	}

	s.State = model.StateQueued
	room, err := uc.rooms.AvailableRoom(ctx)
	if err != nil {
		s.State = model.StateRegistered
		return fmt.Errorf("resolve available room: %w", err)
	}

	admitted, err := uc.admit(ctx, room, s.PlayerID)
	if err != nil {
		s.State = model.StateRegistered
		return err
	}
	if !admitted {
		s.State = model.StateRegistered
		slog.Debug("pair request lost capacity race", "playerID", s.PlayerID, "room", room)
		return nil
	}
	s.State = model.StateInRoom

	members, err := uc.rooms.Members(ctx, room)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	ids := memberIDs(members)

	uc.notifier.Broadcast(ids, message.NewPlayerEvent(s.PlayerID, s.Username, members))
	slog.Info("player joined room", "playerID", s.PlayerID, "room", room, "members", len(ids))

	// capacity is defined by the membership list, the same measure the
	// admission recheck uses; Members can run shorter when a record was
	// concurrently deleted
	count, err := uc.rooms.MemberCount(ctx, room)
	if err != nil {
		return fmt.Errorf("member count: %w", err)
	}
	if count >= uc.maxPlayers {
		return uc.startGame(ctx, s, room, ids)
	}
	return nil
}

// admit runs the capacity check-lock-recheck sequence: an optimistic count
// first so a full room never takes the lock, then the authoritative recheck
// under the room's join semaphore.
func (uc *MatchmakingUC) admit(ctx context.Context, room string, playerID uuid.UUID) (bool, error) {
	count, err := uc.rooms.MemberCount(ctx, room)
	if err != nil {
		return false, fmt.Errorf("member count: %w", err)
	}
	if count >= uc.maxPlayers {
		return false, nil
	}

	release, err := uc.locks.Join(room).Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire join lock: %w", err)
	}
	defer release()

	count, err = uc.rooms.MemberCount(ctx, room)
	if err != nil {
		return false, fmt.Errorf("member recount: %w", err)
	}
	if count >= uc.maxPlayers {
		return false, nil
	}

	if err := uc.rooms.AddPlayerToRoom(ctx, room, playerID); err != nil {
		return false, fmt.Errorf("add player to room: %w", err)
	}
	return true, nil
}

// Ready records a distinct ready vote and starts the game once the
// configured minimum concurs. Voting twice counts once.
func (uc *MatchmakingUC) Ready(ctx context.Context, s *model.Session) error {
	room, err := uc.resync(ctx, s)
	if err != nil {
		return err
	}
	if room == "" {
		slog.Warn("ready vote from roomless player ignored", "playerID", s.PlayerID)
		return nil
	}

	total, _, err := uc.rooms.MarkReady(ctx, room, s.PlayerID)
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	s.State = model.StateReadyPending

	ids, err := uc.rooms.MemberIDs(ctx, room)
	if err != nil {
		return fmt.Errorf("list member ids: %w", err)
	}
	uc.notifier.Broadcast(ids, message.NewReadyAnnouncement(s.PlayerID, s.Username, total))

	if total >= uc.minReady {
		return uc.startGame(ctx, s, room, ids)
	}
	return nil
}

// startGame fires the transition and broadcasts game_start only when this
// caller actually performed it, so the capacity path and the ready path
// cannot both announce the start.
func (uc *MatchmakingUC) startGame(ctx context.Context, s *model.Session, room string, memberIDs []uuid.UUID) error {
	started, err := uc.rooms.StartGame(ctx, room)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	if !started {
		return nil
	}

	s.State = model.StateInGame
	uc.notifier.Broadcast(memberIDs, message.NewGameStartEvent())
	slog.Info("game started", "room", room, "players", len(memberIDs))
	return nil
}

// Leave removes the player from their room. The room is not deleted even
// when it empties; only EndGame deletes a room.
func (uc *MatchmakingUC) Leave(ctx context.Context, s *model.Session) error {
	room, err := uc.resync(ctx, s)
	if err != nil {
		return err
	}
	if room == "" {
		return nil
	}

	if err := uc.rooms.RemovePlayerFromRoom(ctx, room, s.PlayerID); err != nil {
		return fmt.Errorf("remove player from room: %w", err)
	}
	s.State = model.StateRegistered

	ids, err := uc.rooms.MemberIDs(ctx, room)
	if err != nil {
		return fmt.Errorf("list member ids: %w", err)
	}
	uc.notifier.Broadcast(ids, message.NewLeaveEvent(s.PlayerID, s.Username))
	slog.Info("player left room", "playerID", s.PlayerID, "room", room)
	return nil
}

// Disconnect is Leave plus registry deletion; the transport calls it
// unconditionally when the connection closes.
func (uc *MatchmakingUC) Disconnect(ctx context.Context, s *model.Session) error {
	room, err := uc.players.DeletePlayer(ctx, s.PlayerID)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	s.State = model.StateClosed

	if room == "" {
		return nil
	}

	if err := uc.rooms.RemovePlayerFromRoom(ctx, room, s.PlayerID); err != nil {
		return fmt.Errorf("remove player from room: %w", err)
	}

	ids, err := uc.rooms.MemberIDs(ctx, room)
	if err != nil {
		return fmt.Errorf("list member ids: %w", err)
	}
	uc.notifier.Broadcast(ids, message.NewLeaveEvent(s.PlayerID, s.Username))
	slog.Info("player disconnected", "playerID", s.PlayerID, "room", room)
	return nil
}

// EndGame deletes the room's playing entry and membership. Repeated calls
// are harmless no-ops.
func (uc *MatchmakingUC) EndGame(ctx context.Context, s *model.Session) error {
	room, err := uc.resync(ctx, s)
	if err != nil {
		return err
	}
	if room == "" {
		return nil
	}

	ids, err := uc.rooms.MemberIDs(ctx, room)
	if err != nil {
		return fmt.Errorf("list member ids: %w", err)
	}

	if err := uc.rooms.EndGame(ctx, room); err != nil {
		return fmt.Errorf("end game: %w", err)
	}
	s.State = model.StateRegistered

	uc.notifier.Broadcast(ids, message.NewGameEndedEvent())
	slog.Info("game ended", "room", room)
	return nil
}

// resync reads the authoritative room from the player record and realigns
// the local state machine with it. Another member's EndGame clears this
// player's room without touching their session, so a roomless player whose
// session still says in-room/in-game falls back to registered here.
func (uc *MatchmakingUC) resync(ctx context.Context, s *model.Session) (string, error) {
	p, err := uc.players.PlayerByID(ctx, s.PlayerID)
	if err != nil {
		return "", fmt.Errorf("lookup player: %w", err)
	}
	if p.Room == "" {
		switch s.State {
		case model.StateInRoom, model.StateReadyPending, model.StateInGame:
			s.State = model.StateRegistered
		}
	}
	return p.Room, nil
}

func memberIDs(members []model.Player) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

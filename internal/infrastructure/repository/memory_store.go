package repository

import (
	"context"
	"fmt"
	"sync"

	"matchhub/internal/domain/errors"
	"matchhub/internal/domain/model"
	"matchhub/internal/infrastructure/lock"

	"github.com/google/uuid"
)

// MemoryStore — in-process shared store implementing both PlayerRepository
// and RoomRepository behind one mutex, so every multi-field mutation (member
// list plus back-reference) is one atomic unit. Backs unit tests and
// single-node runs without redis.
type MemoryStore struct {
	locks lock.Provider

	mu      sync.Mutex
	players map[uuid.UUID]model.Player
	staged  []string
	playing []string
	members map[string][]uuid.UUID
	ready   map[string]map[uuid.UUID]struct{}
	seq     uint64
}

func NewMemoryStore(locks lock.Provider) *MemoryStore {
	return &MemoryStore{
		locks:   locks,
		players: make(map[uuid.UUID]model.Player),
		members: make(map[string][]uuid.UUID),
		ready:   make(map[string]map[uuid.UUID]struct{}),
	}
}

func (s *MemoryStore) Register(_ context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[player.ID] = *player
	return nil
}

func (s *MemoryStore) PlayerByID(_ context.Context, id uuid.UUID) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, errors.ErrPlayerNotFound
	}
	return &p, nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return "", nil
	}
	delete(s.players, id)
	return p.Room, nil
}

func (s *MemoryStore) CreateRoom(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createRoomLocked(), nil
}

func (s *MemoryStore) createRoomLocked() string {
	s.seq++
	name := fmt.Sprintf("room_%d", s.seq)
	s.staged = append(s.staged, name)
	return name
}

func (s *MemoryStore) StagedRooms(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.staged...), nil
}

func (s *MemoryStore) PlayingRooms(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.playing...), nil
}

func (s *MemoryStore) MemberCount(_ context.Context, room string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.members[room]), nil
}

func (s *MemoryStore) MemberIDs(_ context.Context, room string) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]uuid.UUID(nil), s.members[room]...), nil
}

func (s *MemoryStore) Members(_ context.Context, room string) ([]model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]model.Player, 0, len(s.members[room]))
	for _, id := range s.members[room] {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *MemoryStore) AddPlayerToRoom(_ context.Context, room string, playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members[room] = append(s.members[room], playerID)
	if p, ok := s.players[playerID]; ok {
		p.Room = room
		s.players[playerID] = p
	}
	return nil
}

func (s *MemoryStore) RemovePlayerFromRoom(_ context.Context, room string, playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.members[room]
	for i := len(members) - 1; i >= 0; i-- {
		if members[i] == playerID {
			s.members[room] = append(members[:i], members[i+1:]...)
			break
		}
	}
	if p, ok := s.players[playerID]; ok {
		p.Room = ""
		s.players[playerID] = p
	}
	return nil
}

func (s *MemoryStore) RoomsByPlayer(_ context.Context, playerID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rooms []string
	for _, room := range append(append([]string(nil), s.staged...), s.playing...) {
		for _, id := range s.members[room] {
			if id == playerID {
				rooms = append(rooms, room)
				break
			}
		}
	}
	return rooms, nil
}

func (s *MemoryStore) StartGame(_ context.Context, room string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, name := range s.staged {
		if name == room {
			s.staged = append(s.staged[:i], s.staged[i+1:]...)
			s.playing = append(s.playing, room)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) EndGame(_ context.Context, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = removeName(s.playing, room)
	s.staged = removeName(s.staged, room)
	for _, id := range s.members[room] {
		if p, ok := s.players[id]; ok {
			p.Room = ""
			p.Ready = false
			s.players[id] = p
		}
	}
	delete(s.members, room)
	delete(s.ready, room)
	return nil
}

func (s *MemoryStore) AvailableRoom(ctx context.Context) (string, error) {
	release, err := s.locks.Selection().Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.staged) > 0 {
		return s.staged[0], nil
	}
	return s.createRoomLocked(), nil
}

func (s *MemoryStore) MarkReady(_ context.Context, room string, playerID uuid.UUID) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes, ok := s.ready[room]
	if !ok {
		votes = make(map[uuid.UUID]struct{})
		s.ready[room] = votes
	}

	_, voted := votes[playerID]
	votes[playerID] = struct{}{}
	if p, ok := s.players[playerID]; ok {
		p.Ready = true
		s.players[playerID] = p
	}
	return len(votes), !voted, nil
}

func (s *MemoryStore) ReadyCount(_ context.Context, room string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ready[room]), nil
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}

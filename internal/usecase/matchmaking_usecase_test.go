package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"matchhub/internal/domain/message"
	"matchhub/internal/domain/model"
	"matchhub/internal/infrastructure/lock"
	"matchhub/internal/infrastructure/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	to    []uuid.UUID
	event *message.Event
}

// notifyRecorder captures broadcasts instead of writing to sockets.
type notifyRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *notifyRecorder) Broadcast(playerIDs []uuid.UUID, event *message.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, recordedEvent{
		to:    append([]uuid.UUID(nil), playerIDs...),
		event: event,
	})
}

func (r *notifyRecorder) ofType(msgType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []recordedEvent
	for _, e := range r.events {
		if e.event.Type == msgType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store    *repository.MemoryStore
	recorder *notifyRecorder
	uc       *MatchmakingUC
}

func newFixture(maxPlayers, minReady int) *fixture {
	locks := lock.NewLocalProvider()
	store := repository.NewMemoryStore(locks)
	recorder := &notifyRecorder{}
	return &fixture{
		store:    store,
		recorder: recorder,
		uc:       NewMatchmakingUC(store, store, locks, recorder, maxPlayers, minReady),
	}
}

func (f *fixture) connect(t *testing.T, username string) *model.Session {
	t.Helper()
	s, err := f.uc.Connect(context.Background(), uuid.New(), username)
	require.NoError(t, err)
	require.Equal(t, model.StateRegistered, s.State)
	return s
}

func (f *fixture) roomOf(t *testing.T, s *model.Session) string {
	t.Helper()
	p, err := f.store.PlayerByID(context.Background(), s.PlayerID)
	require.NoError(t, err)
	return p.Room
}

func TestPair_FillRoomOfTwo(t *testing.T) {
	f := newFixture(2, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Pair(ctx, a))

	joins := f.recorder.ofType(message.MsgTypeNewPlayer)
	require.Len(t, joins, 1)
	assert.Equal(t, []uuid.UUID{a.PlayerID}, joins[0].to)
	require.Len(t, joins[0].event.AllPlayers, 1)
	assert.Equal(t, a.PlayerID, joins[0].event.AllPlayers[0].ID)
	assert.Empty(t, f.recorder.ofType(message.MsgTypeGameStart))

	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, b))

	assert.Equal(t, f.roomOf(t, a), f.roomOf(t, b))

	joins = f.recorder.ofType(message.MsgTypeNewPlayer)
	require.Len(t, joins, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.PlayerID, b.PlayerID}, joins[1].to)
	assert.Len(t, joins[1].event.AllPlayers, 2)

	starts := f.recorder.ofType(message.MsgTypeGameStart)
	require.Len(t, starts, 1)
	assert.ElementsMatch(t, []uuid.UUID{a.PlayerID, b.PlayerID}, starts[0].to)
	assert.Equal(t, model.StateInGame, b.State)
}

func TestPair_ConcurrentRequestsRespectCapacity(t *testing.T) {
	const players = 8
	const capacity = 2

	f := newFixture(capacity, capacity)
	ctx := context.Background()

	sessions := make([]*model.Session, players)
	for i := range sessions {
		sessions[i] = f.connect(t, "player")
	}

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *model.Session) {
			defer wg.Done()
			// a lost capacity race is dropped silently; the client retries
			for {
				if err := f.uc.Pair(ctx, s); err != nil {
					t.Error(err)
					return
				}
				p, err := f.store.PlayerByID(ctx, s.PlayerID)
				if err != nil {
					t.Error(err)
					return
				}
				if p.Room != "" {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}(s)
	}
	wg.Wait()

	staged, err := f.store.StagedRooms(ctx)
	require.NoError(t, err)
	playing, err := f.store.PlayingRooms(ctx)
	require.NoError(t, err)

	rooms := append(staged, playing...)
	assert.Len(t, rooms, players/capacity, "rooms created must equal ceil(N/M)")

	for _, room := range rooms {
		n, err := f.store.MemberCount(ctx, room)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, capacity, "room %s over capacity", room)
	}
}

func TestPair_StartsWhenFullDespiteDeletedMemberRecord(t *testing.T) {
	f := newFixture(2, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Pair(ctx, a))
	room := f.roomOf(t, a)

	// a's record vanishes but the id stays on the member list, so the room
	// is still full by the admission path's measure
	_, err := f.store.DeletePlayer(ctx, a.PlayerID)
	require.NoError(t, err)

	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, b))
	require.Equal(t, room, f.roomOf(t, b))

	assert.Len(t, f.recorder.ofType(message.MsgTypeGameStart), 1,
		"a full member list must start the game even when a record is gone")
}

func TestPair_WhileInGameIsRejected(t *testing.T) {
	f := newFixture(2, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, a))
	require.NoError(t, f.uc.Pair(ctx, b))
	require.Equal(t, model.StateInGame, b.State)

	require.NoError(t, f.uc.Pair(ctx, b))

	staged, err := f.store.StagedRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged, "a rejected pair request must not create a room")
	assert.Len(t, f.recorder.ofType(message.MsgTypeNewPlayer), 2)
}

func TestPair_ResyncsAfterAnotherMemberEndsTheGame(t *testing.T) {
	f := newFixture(2, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, a))
	require.NoError(t, f.uc.Pair(ctx, b))
	require.Equal(t, model.StateInGame, b.State)

	require.NoError(t, f.uc.EndGame(ctx, a))

	// b's session still says in-game; the store knows the room is gone
	require.NoError(t, f.uc.Pair(ctx, b))
	assert.NotEqual(t, "", f.roomOf(t, b))
	assert.Equal(t, model.StateInRoom, b.State)
}

func TestPair_MultiplyJoinedPlayerIsRejected(t *testing.T) {
	f := newFixture(4, 4)
	ctx := context.Background()

	a := f.connect(t, "alice")
	// stale multi-room membership, normally impossible through the API
	for i := 0; i < 2; i++ {
		room, err := f.store.CreateRoom(ctx)
		require.NoError(t, err)
		require.NoError(t, f.store.AddPlayerToRoom(ctx, room, a.PlayerID))
	}

	require.NoError(t, f.uc.Pair(ctx, a))

	staged, err := f.store.StagedRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, staged, 2, "no room may be created for a rejected request")
	assert.Empty(t, f.recorder.events)
}

func TestReady_MinimumForcesEarlyStartOnce(t *testing.T) {
	f := newFixture(4, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	c := f.connect(t, "carol")
	for _, s := range []*model.Session{a, b, c} {
		require.NoError(t, f.uc.Pair(ctx, s))
	}
	require.Equal(t, f.roomOf(t, a), f.roomOf(t, c))

	require.NoError(t, f.uc.Ready(ctx, a))
	ann := f.recorder.ofType(message.MsgTypeReadyAnnouncement)
	require.Len(t, ann, 1)
	assert.Equal(t, 1, ann[0].event.TotalReadyCount)
	assert.Empty(t, f.recorder.ofType(message.MsgTypeGameStart))

	require.NoError(t, f.uc.Ready(ctx, b))
	ann = f.recorder.ofType(message.MsgTypeReadyAnnouncement)
	require.Len(t, ann, 2)
	assert.Equal(t, 2, ann[1].event.TotalReadyCount)
	assert.Len(t, f.recorder.ofType(message.MsgTypeGameStart), 1)

	// a third vote after the start must not re-announce the start
	require.NoError(t, f.uc.Ready(ctx, c))
	assert.Len(t, f.recorder.ofType(message.MsgTypeGameStart), 1)
}

func TestReady_DoubleVoteCountsOnce(t *testing.T) {
	f := newFixture(4, 3)
	ctx := context.Background()

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Pair(ctx, a))

	require.NoError(t, f.uc.Ready(ctx, a))
	require.NoError(t, f.uc.Ready(ctx, a))

	room := f.roomOf(t, a)
	total, err := f.store.ReadyCount(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, f.recorder.ofType(message.MsgTypeGameStart))
}

func TestReady_RoomlessPlayerIsIgnored(t *testing.T) {
	f := newFixture(2, 2)

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Ready(context.Background(), a))

	assert.Empty(t, f.recorder.events)
}

func TestLeave_LastMemberLeavesEmptyStagedRoomBehind(t *testing.T) {
	f := newFixture(4, 4)
	ctx := context.Background()

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Pair(ctx, a))
	room := f.roomOf(t, a)

	require.NoError(t, f.uc.Leave(ctx, a))

	assert.Equal(t, "", f.roomOf(t, a))
	n, err := f.store.MemberCount(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the empty room stays staged and gets reused by the next pairing
	staged, err := f.store.StagedRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{room}, staged)

	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, b))
	assert.Equal(t, room, f.roomOf(t, b))
}

func TestLeave_NotifiesRemainingMembers(t *testing.T) {
	f := newFixture(4, 4)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, a))
	require.NoError(t, f.uc.Pair(ctx, b))

	require.NoError(t, f.uc.Leave(ctx, a))

	leaves := f.recorder.ofType(message.MsgTypeLeave)
	require.Len(t, leaves, 1)
	assert.Equal(t, []uuid.UUID{b.PlayerID}, leaves[0].to)
	assert.Equal(t, a.PlayerID, leaves[0].event.UserID)
	assert.Equal(t, "alice", leaves[0].event.Username)
}

func TestDisconnect_DeletesPlayerAndCascadesLeave(t *testing.T) {
	f := newFixture(4, 4)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, a))
	require.NoError(t, f.uc.Pair(ctx, b))
	room := f.roomOf(t, a)

	require.NoError(t, f.uc.Disconnect(ctx, a))

	assert.Equal(t, model.StateClosed, a.State)
	_, err := f.store.PlayerByID(ctx, a.PlayerID)
	assert.Error(t, err)

	ids, err := f.store.MemberIDs(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.PlayerID}, ids)

	leaves := f.recorder.ofType(message.MsgTypeLeave)
	require.Len(t, leaves, 1)
	assert.Equal(t, []uuid.UUID{b.PlayerID}, leaves[0].to)
}

func TestDisconnect_RoomlessPlayerIsQuiet(t *testing.T) {
	f := newFixture(2, 2)

	a := f.connect(t, "alice")
	require.NoError(t, f.uc.Disconnect(context.Background(), a))

	assert.Empty(t, f.recorder.events)
}

func TestEndGame_DeletesRoomAndNotifies(t *testing.T) {
	f := newFixture(2, 2)
	ctx := context.Background()

	a := f.connect(t, "alice")
	b := f.connect(t, "bob")
	require.NoError(t, f.uc.Pair(ctx, a))
	require.NoError(t, f.uc.Pair(ctx, b))
	room := f.roomOf(t, a)
	require.Len(t, f.recorder.ofType(message.MsgTypeGameStart), 1)

	require.NoError(t, f.uc.EndGame(ctx, a))

	ended := f.recorder.ofType(message.MsgTypeGameEnded)
	require.Len(t, ended, 1)
	assert.ElementsMatch(t, []uuid.UUID{a.PlayerID, b.PlayerID}, ended[0].to)

	playing, err := f.store.PlayingRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, playing)
	n, err := f.store.MemberCount(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the room is gone for everyone, so a second notification is a no-op
	require.NoError(t, f.uc.EndGame(ctx, b))
	assert.Len(t, f.recorder.ofType(message.MsgTypeGameEnded), 1)
}

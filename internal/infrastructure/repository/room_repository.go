package repository

import (
	"context"
	"fmt"

	"matchhub/internal/domain/model"
	"matchhub/internal/infrastructure/lock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoomRepository — the room directory. Rooms are either staged (accepting
// members) or playing (closed to joins); ending a game deletes the room.
// Leave on the last member deliberately leaves an empty staged room behind
// for AvailableRoom to reuse; only EndGame deletes a room.
type RoomRepository interface {
	CreateRoom(ctx context.Context) (string, error)
	StagedRooms(ctx context.Context) ([]string, error)
	PlayingRooms(ctx context.Context) ([]string, error)
	MemberCount(ctx context.Context, room string) (int, error)
	MemberIDs(ctx context.Context, room string) ([]uuid.UUID, error)
	// Members resolves the full player record for every member in join
	// order; ids whose record was concurrently deleted are omitted.
	Members(ctx context.Context, room string) ([]model.Player, error)
	AddPlayerToRoom(ctx context.Context, room string, playerID uuid.UUID) error
	RemovePlayerFromRoom(ctx context.Context, room string, playerID uuid.UUID) error
	RoomsByPlayer(ctx context.Context, playerID uuid.UUID) ([]string, error)
	// StartGame moves room from staged to playing and reports whether this
	// call performed the transition; repeated or racing calls report false.
	StartGame(ctx context.Context, room string) (bool, error)
	EndGame(ctx context.Context, room string) error
	// AvailableRoom returns a staged room to join, creating one when none
	// exists. The whole check-or-create runs under the selection lock.
	AvailableRoom(ctx context.Context) (string, error)
	// MarkReady records a distinct ready vote and returns the running total;
	// the bool reports whether this vote was new for the player.
	MarkReady(ctx context.Context, room string, playerID uuid.UUID) (int, bool, error)
	ReadyCount(ctx context.Context, room string) (int, error)
}

type RoomRedisRepo struct {
	rdb   *redis.Client
	locks lock.Provider
}

func NewRoomRedisRepo(rdb *redis.Client, locks lock.Provider) *RoomRedisRepo {
	return &RoomRedisRepo{rdb: rdb, locks: locks}
}

func (r *RoomRedisRepo) CreateRoom(ctx context.Context) (string, error) {
	seq, err := r.rdb.Incr(ctx, roomSeqKey).Result()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("room_%d", seq)

	if err := r.rdb.RPush(ctx, stagedListKey, name).Err(); err != nil {
		return "", err
	}
	return name, nil
}

func (r *RoomRedisRepo) StagedRooms(ctx context.Context) ([]string, error) {
	return r.rdb.LRange(ctx, stagedListKey, 0, -1).Result()
}

func (r *RoomRedisRepo) PlayingRooms(ctx context.Context) ([]string, error) {
	return r.rdb.LRange(ctx, playingListKey, 0, -1).Result()
}

func (r *RoomRedisRepo) MemberCount(ctx context.Context, room string) (int, error) {
	n, err := r.rdb.LLen(ctx, membersKey(room)).Result()
	return int(n), err
}

func (r *RoomRedisRepo) MemberIDs(ctx context.Context, room string) ([]uuid.UUID, error) {
	raw, err := r.rdb.LRange(ctx, membersKey(room), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse member id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *RoomRedisRepo) Members(ctx context.Context, room string) ([]model.Player, error) {
	ids, err := r.MemberIDs(ctx, room)
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		fields, err := r.rdb.HGetAll(ctx, playerKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue // record deleted since the id was listed
		}
		players = append(players, model.Player{
			ID:       id,
			Username: fields["username"],
			Room:     fields["room"],
			Ready:    fields["ready"] == "1",
		})
	}
	return players, nil
}

// AddPlayerToRoom appends the member and updates the player's back-reference
// in one MULTI/EXEC unit.
func (r *RoomRedisRepo) AddPlayerToRoom(ctx context.Context, room string, playerID uuid.UUID) error {
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, membersKey(room), playerID.String())
	pipe.HSet(ctx, playerKey(playerID), "room", room)
	_, err := pipe.Exec(ctx)
	return err
}

// back-reference writes are guarded on key existence: an unconditional HSET
// after DeletePlayer would recreate the hash and resurrect the record
var removeMemberScript = redis.NewScript(`
redis.call("LREM", KEYS[1], -1, ARGV[1])
if redis.call("EXISTS", KEYS[2]) == 1 then
	redis.call("HSET", KEYS[2], "room", "")
end
return 1
`)

var endGameScript = redis.NewScript(`
redis.call("LREM", KEYS[1], 1, ARGV[1])
redis.call("LREM", KEYS[2], 1, ARGV[1])
local members = redis.call("LRANGE", KEYS[3], 0, -1)
for _, id in ipairs(members) do
	local key = ARGV[2] .. id
	if redis.call("EXISTS", key) == 1 then
		redis.call("HSET", key, "room", "", "ready", "0")
	end
end
redis.call("DEL", KEYS[3], KEYS[4])
return 1
`)

// RemovePlayerFromRoom drops the most recent occurrence of the id (LREM with
// a negative count scans from the tail) and clears the back-reference.
// No-op when the player is not a member.
func (r *RoomRedisRepo) RemovePlayerFromRoom(ctx context.Context, room string, playerID uuid.UUID) error {
	return removeMemberScript.Run(
		ctx, r.rdb,
		[]string{membersKey(room), playerKey(playerID)},
		playerID.String(),
	).Err()
}

func (r *RoomRedisRepo) RoomsByPlayer(ctx context.Context, playerID uuid.UUID) ([]string, error) {
	staged, err := r.StagedRooms(ctx)
	if err != nil {
		return nil, err
	}
	playing, err := r.PlayingRooms(ctx)
	if err != nil {
		return nil, err
	}

	var rooms []string
	for _, room := range append(staged, playing...) {
		members, err := r.rdb.LRange(ctx, membersKey(room), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m == playerID.String() {
				rooms = append(rooms, room)
				break
			}
		}
	}
	return rooms, nil
}

func (r *RoomRedisRepo) StartGame(ctx context.Context, room string) (bool, error) {
	// LREM is the decider: whichever caller removes the staged entry owns
	// the transition, so racing callers cannot both report true.
	removed, err := r.rdb.LRem(ctx, stagedListKey, 1, room).Result()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}

	if err := r.rdb.RPush(ctx, playingListKey, room).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RoomRedisRepo) EndGame(ctx context.Context, room string) error {
	return endGameScript.Run(
		ctx, r.rdb,
		[]string{playingListKey, stagedListKey, membersKey(room), readyKey(room)},
		room, playerKeyPrefix,
	).Err()
}

func (r *RoomRedisRepo) AvailableRoom(ctx context.Context) (string, error) {
	release, err := r.locks.Selection().Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	room, err := r.rdb.LIndex(ctx, stagedListKey, 0).Result()
	if err == nil {
		return room, nil
	}
	if err != redis.Nil {
		return "", err
	}
	return r.CreateRoom(ctx)
}

func (r *RoomRedisRepo) MarkReady(ctx context.Context, room string, playerID uuid.UUID) (int, bool, error) {
	pipe := r.rdb.TxPipeline()
	added := pipe.SAdd(ctx, readyKey(room), playerID.String())
	pipe.HSet(ctx, playerKey(playerID), "ready", "1")
	total := pipe.SCard(ctx, readyKey(room))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, false, err
	}
	return int(total.Val()), added.Val() == 1, nil
}

func (r *RoomRedisRepo) ReadyCount(ctx context.Context, room string) (int, error) {
	n, err := r.rdb.SCard(ctx, readyKey(room)).Result()
	return int(n), err
}

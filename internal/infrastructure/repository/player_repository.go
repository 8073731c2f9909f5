package repository

import (
	"context"

	"matchhub/internal/domain/errors"
	"matchhub/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type PlayerRepository interface {
	Register(ctx context.Context, player *model.Player) error
	PlayerByID(ctx context.Context, id uuid.UUID) (*model.Player, error)
	// DeletePlayer removes the record and returns the room it referenced,
	// "" when the player was roomless or already deleted.
	DeletePlayer(ctx context.Context, id uuid.UUID) (string, error)
}

// read-room-then-delete in one step so the cascade target cannot change
// between the two calls
var deletePlayerScript = redis.NewScript(`
local room = redis.call("HGET", KEYS[1], "room")
redis.call("DEL", KEYS[1])
if room then
	return room
end
return ""
`)

type PlayerRedisRepo struct {
	rdb *redis.Client
}

func NewPlayerRedisRepo(rdb *redis.Client) *PlayerRedisRepo {
	return &PlayerRedisRepo{rdb: rdb}
}

func (r *PlayerRedisRepo) Register(ctx context.Context, player *model.Player) error {
	return r.rdb.HSet(ctx, playerKey(player.ID), map[string]interface{}{
		"username": player.Username,
		"room":     player.Room,
		"ready":    boolField(player.Ready),
	}).Err()
}

func (r *PlayerRedisRepo) PlayerByID(ctx context.Context, id uuid.UUID) (*model.Player, error) {
	fields, err := r.rdb.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.ErrPlayerNotFound
	}

	return &model.Player{
		ID:       id,
		Username: fields["username"],
		Room:     fields["room"],
		Ready:    fields["ready"] == "1",
	}, nil
}

func (r *PlayerRedisRepo) DeletePlayer(ctx context.Context, id uuid.UUID) (string, error) {
	room, err := deletePlayerScript.Run(ctx, r.rdb, []string{playerKey(id)}).Text()
	if err != nil {
		return "", err
	}
	return room, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

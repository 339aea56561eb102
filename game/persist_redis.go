package game

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const redisKeyPrefix = "tichu:game:"

type RedisGameStateTracker struct {
	rdclient *redis.Client
}

func NewRedisGameStateTracker(redisURL string, redisPW string, redisDB int) *RedisGameStateTracker {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisGameStateTracker{
		rdclient: rdclient,
	}
}

func (r *RedisGameStateTracker) Load(gameCode string) (*GameState, error) {
	stateBytes, err := r.rdclient.Get(context.Background(), redisKeyPrefix+gameCode).Bytes()
	if err == redis.Nil {
		return nil, StateNotFoundError{GameCode: gameCode}
	} else if err != nil {
		return nil, errors.Wrapf(err, "Unable to load game state for %s", gameCode)
	}
	state, err := UnmarshalState(stateBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to decode game state for %s", gameCode)
	}
	return state, nil
}

func (r *RedisGameStateTracker) Save(gameCode string, state *GameState) error {
	stateInBytes, err := MarshalState(state)
	if err != nil {
		return err
	}
	err = r.rdclient.Set(context.Background(), redisKeyPrefix+gameCode, stateInBytes, 0).Err()
	return errors.Wrapf(err, "Unable to save game state for %s", gameCode)
}

func (r *RedisGameStateTracker) Remove(gameCode string) error {
	err := r.rdclient.Del(context.Background(), redisKeyPrefix+gameCode).Err()
	return errors.Wrapf(err, "Unable to remove game state for %s", gameCode)
}

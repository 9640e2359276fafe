package redisClient

import (
	"encoding/json"
	"time"

	"github.com/ghaniswara/dharmasaathi/internal/config"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedis(redisClient *redis.Client) *RedisClient {
	return &RedisClient{Client: redisClient}
}

// Connect builds a client from REDIS_* config keys and pings it.
func Connect(cfg config.IConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Get("REDIS_HOST") + ":" + cfg.Get("REDIS_PORT"),
		Password: cfg.Get("REDIS_PASSWORD"),
		DB:       0,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	return NewRedis(client), nil
}

// GetInt returns the integer stored at key. ok is false on a cache miss.
func (r *RedisClient) GetInt(key string) (value int, ok bool, err error) {
	value, err = r.Client.Get(key).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// SeedInt stores value only when the key is absent.
func (r *RedisClient) SeedInt(key string, value int, ttl time.Duration) error {
	return r.Client.SetNX(key, value, ttl).Err()
}

// SetInt overwrites key with value.
func (r *RedisClient) SetInt(key string, value int, ttl time.Duration) error {
	return r.Client.Set(key, value, ttl).Err()
}

func (r *RedisClient) SetJSON(key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Client.Set(key, raw, ttl).Err()
}

// GetJSON decodes the value at key into v. ok is false on a cache miss.
func (r *RedisClient) GetJSON(key string, v interface{}) (ok bool, err error) {
	raw, err := r.Client.Get(key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisClient) Delete(keys ...string) error {
	return r.Client.Del(keys...).Err()
}

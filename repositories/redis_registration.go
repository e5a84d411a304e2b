package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"touroku/domain/registration"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// RedisRegistrationRepository keeps one bson-encoded value per "csn:{csn}" key.
type RedisRegistrationRepository struct {
	client *redis.Client
	log    *slog.Logger
}

// OpenRedisRegistrationRepository parses a redis:// URL and pings the server.
func OpenRedisRegistrationRepository(ctx context.Context, url string, log *slog.Logger) (*RedisRegistrationRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisRegistrationRepository(client, log), nil
}

func NewRedisRegistrationRepository(client *redis.Client, log *slog.Logger) *RedisRegistrationRepository {
	return &RedisRegistrationRepository{client: client, log: log}
}

func (r *RedisRegistrationRepository) FindByCSN(ctx context.Context, csn string) (*registration.Record, error) {
	data, err := r.client.Get(ctx, keyPrefix+csn).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &record, nil
}

func (r *RedisRegistrationRepository) Upsert(ctx context.Context, record registration.Record) error {
	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return r.client.Set(ctx, keyPrefix+record.CSN, data, 0).Err()
}

// Swap uses SET with the GET flag, which writes and returns the old value in one command.
func (r *RedisRegistrationRepository) Swap(ctx context.Context, record registration.Record) (*registration.Record, error) {
	data, err := encodeRecord(record)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}
	old, err := r.client.SetArgs(ctx, keyPrefix+record.CSN, data, redis.SetArgs{Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	previous, err := decodeRecord([]byte(old))
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &previous, nil
}

func (r *RedisRegistrationRepository) List(ctx context.Context, limit int) ([]registration.Record, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	records := make([]registration.Record, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Key expired or was deleted between SCAN and MGET.
			continue
		}
		record, err := decodeRecord([]byte(raw))
		if err != nil {
			r.log.Warn("Skipping undecodable record", "key", keys[i], "error", err)
			continue
		}
		records = append(records, record)
	}
	return newestFirst(records, limit), nil
}

func (r *RedisRegistrationRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRegistrationRepository) Close(_ context.Context) error {
	return r.client.Close()
}

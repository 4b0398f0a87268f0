package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

const recordingKeyPrefix = "recording:"

// RedisRepository кэширует исходные ряды записей с TTL
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisRepository(addr, password string, db int, ttl time.Duration, logger *slog.Logger) *RedisRepository {
	return NewRedisRepositoryFromClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl, logger)
}

// NewRedisRepositoryFromClient оборачивает готовый клиент
func NewRedisRepositoryFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRepository{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "redis"),
	}
}

func (r *RedisRepository) SaveRecording(ctx context.Context, rec *models.Recording) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recording: %w", err)
	}

	if err := r.client.Set(ctx, recordingKeyPrefix+rec.Handle, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save recording to Redis: %w", err)
	}

	r.logger.Debug("recording cached", "handle", rec.Handle, "rows", len(rec.Series.Time), "ttl", r.ttl)
	return nil
}

func (r *RedisRepository) GetRecording(ctx context.Context, handle string) (*models.Recording, error) {
	data, err := r.client.Get(ctx, recordingKeyPrefix+handle).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, handle)
		}
		return nil, fmt.Errorf("failed to get recording from Redis: %w", err)
	}

	var rec models.Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording: %w", err)
	}

	r.logger.Debug("recording restored from cache", "handle", handle, "rows", len(rec.Series.Time))
	return &rec, nil
}

func (r *RedisRepository) DeleteRecording(ctx context.Context, handle string) error {
	if err := r.client.Del(ctx, recordingKeyPrefix+handle).Err(); err != nil {
		return fmt.Errorf("failed to delete recording from Redis: %w", err)
	}

	r.logger.Debug("recording removed from cache", "handle", handle)
	return nil
}

// CheckConnection проверяет доступность Redis
func (r *RedisRepository) CheckConnection(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

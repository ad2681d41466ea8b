package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mocapboston/onboarding/internal/models"
)

// RedisStore keeps each session as a hash under "<prefix>:<id>" and indexes
// gallery opt-ins in the sorted set "<prefix>:gallery", scored by opt-in time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore parses redisURL and verifies the connection
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *RedisStore) galleryKey() string {
	return r.prefix + ":gallery"
}

func (r *RedisStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	values, err := r.client.HGetAll(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}
	return decodeSessionHash(id, values), nil
}

func (r *RedisStore) MergeSession(ctx context.Context, id string, patch models.SessionPatch) error {
	key := r.sessionKey(id)
	now := time.Now()

	values := map[string]interface{}{
		models.FieldUpdatedAt: now.Format(time.RFC3339Nano),
	}
	for field, value := range patch.Fields() {
		values[field] = strconv.FormatBool(value.(bool))
	}

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrSessionNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values)
			if patch.GalleryVisible != nil {
				if *patch.GalleryVisible {
					pipe.ZAdd(ctx, r.galleryKey(), redis.Z{Score: float64(now.UnixNano()), Member: id})
				} else {
					pipe.ZRem(ctx, r.galleryKey(), id)
				}
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, ErrSessionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	return nil
}

// galleryPageSize bounds each read of the gallery index when no limit is set
const galleryPageSize = 100

// ListGallery walks the gallery index newest first, one window at a time,
// and stops as soon as limit visible sessions are found.
func (r *RedisStore) ListGallery(ctx context.Context, limit int) ([]*models.Session, error) {
	window := int64(limit)
	if window <= 0 {
		window = galleryPageSize
	}

	var sessions []*models.Session
	for start := int64(0); ; start += window {
		ids, err := r.client.ZRevRange(ctx, r.galleryKey(), start, start+window-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list gallery: %w", err)
		}
		if len(ids) == 0 {
			return sessions, nil
		}

		page, err := r.loadSessions(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, session := range page {
			if !session.InGallery() {
				continue
			}
			sessions = append(sessions, session)
			if limit > 0 && len(sessions) == limit {
				return sessions, nil
			}
		}

		if int64(len(ids)) < window {
			return sessions, nil
		}
	}
}

// loadSessions fetches the hashes for ids in one round trip, skipping ids
// whose hash no longer exists
func (r *RedisStore) loadSessions(ctx context.Context, ids []string) ([]*models.Session, error) {
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.sessionKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery sessions: %w", err)
	}

	sessions := make([]*models.Session, 0, len(ids))
	for i, cmd := range cmds {
		values := cmd.Val()
		if len(values) == 0 {
			continue
		}
		sessions = append(sessions, decodeSessionHash(ids[i], values))
	}
	return sessions, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// decodeSessionHash maps hash fields onto a Session. Missing or unparsable
// flags read as false, matching an absent document field.
func decodeSessionHash(id string, values map[string]string) *models.Session {
	session := &models.Session{
		ID:             id,
		GifID:          values[models.FieldGifID],
		Solved:         parseFlag(values[models.FieldSolved]),
		Processed:      parseFlag(values[models.FieldProcessed]),
		ShareAnswer:    parseFlag(values[models.FieldShareAnswer]),
		GalleryVisible: parseFlag(values[models.FieldGalleryVisible]),
	}
	if t, err := time.Parse(time.RFC3339Nano, values[models.FieldCreatedAt]); err == nil {
		session.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, values[models.FieldUpdatedAt]); err == nil {
		session.UpdatedAt = t
	}
	return session
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

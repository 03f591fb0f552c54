package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store persists per-chapter line stats of a lesson.
type Store interface {
	Load(ctx context.Context, lessonID uuid.UUID, chapter int) (ChapterStats, error)
	LoadLesson(ctx context.Context, lessonID uuid.UUID, chapters int) ([]ChapterStats, error)
	MarkComplete(ctx context.Context, lessonID uuid.UUID, chapter int, lineKey string) error
	Reset(ctx context.Context, lessonID uuid.UUID, chapter int) error
}

// RedisStore keeps one hash per chapter: field = line key, value = JSON
// LineStats.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// NewRedisStoreFromURL connects to redisURL ("redis://host:port/db").
func NewRedisStoreFromURL(ctx context.Context, redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) key(lessonID uuid.UUID, chapter int) string {
	return fmt.Sprintf("lesson:%s:chapter:%d:lines", lessonID, chapter)
}

func (s *RedisStore) Load(ctx context.Context, lessonID uuid.UUID, chapter int) (ChapterStats, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key(lessonID, chapter)).Result()
	if err != nil {
		return nil, fmt.Errorf("load chapter stats: %w", err)
	}
	return decodeStats(raw)
}

func (s *RedisStore) LoadLesson(ctx context.Context, lessonID uuid.UUID, chapters int) ([]ChapterStats, error) {
	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, chapters)
	for i := range cmds {
		cmds[i] = pipe.HGetAll(ctx, s.key(lessonID, i))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load lesson stats: %w", err)
	}
	out := make([]ChapterStats, chapters)
	for i, cmd := range cmds {
		st, err := decodeStats(cmd.Val())
		if err != nil {
			return nil, fmt.Errorf("chapter %d: %w", i+1, err)
		}
		out[i] = st
	}
	return out, nil
}

func (s *RedisStore) MarkComplete(ctx context.Context, lessonID uuid.UUID, chapter int, lineKey string) error {
	if strings.TrimSpace(lineKey) == "" {
		return fmt.Errorf("empty line key")
	}
	raw, err := json.Marshal(LineStats{IsComplete: true, LineKey: lineKey})
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, s.key(lessonID, chapter), lineKey, raw).Err(); err != nil {
		return fmt.Errorf("mark line complete: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, lessonID uuid.UUID, chapter int) error {
	return s.rdb.Del(ctx, s.key(lessonID, chapter)).Err()
}

func decodeStats(raw map[string]string) (ChapterStats, error) {
	out := make(ChapterStats, len(raw))
	for field, v := range raw {
		var st LineStats
		if err := json.Unmarshal([]byte(v), &st); err != nil {
			return nil, fmt.Errorf("decode stats for %q: %w", field, err)
		}
		out[field] = st
	}
	return out, nil
}

type memKey struct {
	lesson  uuid.UUID
	chapter int
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	stats map[memKey]ChapterStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stats: make(map[memKey]ChapterStats)}
}

func (m *MemoryStore) Load(ctx context.Context, lessonID uuid.UUID, chapter int) (ChapterStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats[memKey{lessonID, chapter}].Clone(), nil
}

func (m *MemoryStore) LoadLesson(ctx context.Context, lessonID uuid.UUID, chapters int) ([]ChapterStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ChapterStats, chapters)
	for i := range out {
		out[i] = m.stats[memKey{lessonID, i}].Clone()
	}
	return out, nil
}

func (m *MemoryStore) MarkComplete(ctx context.Context, lessonID uuid.UUID, chapter int, lineKey string) error {
	if strings.TrimSpace(lineKey) == "" {
		return fmt.Errorf("empty line key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{lessonID, chapter}
	m.stats[k] = m.stats[k].MarkComplete(lineKey)
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context, lessonID uuid.UUID, chapter int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stats, memKey{lessonID, chapter})
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

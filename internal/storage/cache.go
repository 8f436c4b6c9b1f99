package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	docCacheTTL    = time.Hour
	leaderboardKey = "lyricsync:leaderboard"
)

// Cache fronts the SQLite store with Redis: serialized lyric documents are
// cached per format, and the contribution leaderboard lives in a sorted set.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects to Redis and verifies the connection.
func NewCache(addr, password string, db int) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

func docKey(songID, format string) string {
	return fmt.Sprintf("lyricsync:lrc:%s:%s", songID, format)
}

// GetDocument returns a cached serialization, or ("", false) on a miss.
// Redis errors count as misses; the store remains the source of truth.
func (c *Cache) GetDocument(ctx context.Context, songID, format string) (string, bool) {
	val, err := c.rdb.Get(ctx, docKey(songID, format)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// SetDocument caches a serialized document for its format.
func (c *Cache) SetDocument(ctx context.Context, songID, format, payload string) {
	c.rdb.Set(ctx, docKey(songID, format), payload, docCacheTTL)
}

// InvalidateDocument drops every cached format for a song. Called whenever a
// new document version is saved.
func (c *Cache) InvalidateDocument(ctx context.Context, songID string) {
	c.rdb.Del(ctx, docKey(songID, "json"), docKey(songID, "lrc"), docKey(songID, "srt"))
}

// LeaderboardEntry is one ranked contributor.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// AddPoints bumps a contributor's leaderboard score.
func (c *Cache) AddPoints(ctx context.Context, userID string, delta int) error {
	return c.rdb.ZIncrBy(ctx, leaderboardKey, float64(delta), userID).Err()
}

// Leaderboard returns the top n contributors by points.
func (c *Cache) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n < 1 {
		n = 10
	}
	members, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, _ := m.Member.(string)
		entries = append(entries, LeaderboardEntry{
			UserID: userID,
			Points: int(m.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

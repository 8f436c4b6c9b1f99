package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/points"
	"github.com/lyricsync/lyricsync/internal/storage"
)

// LeaderboardHandler serves contributor rankings and profile points.
type LeaderboardHandler struct {
	store *storage.Store
	cache *storage.Cache
}

// NewLeaderboardHandler creates a new leaderboard handler. The cache may be
// nil, in which case rankings are unavailable but profiles still resolve.
func NewLeaderboardHandler(store *storage.Store, cache *storage.Cache) *LeaderboardHandler {
	return &LeaderboardHandler{store: store, cache: cache}
}

// Top returns the highest-ranked contributors.
func (h *LeaderboardHandler) Top(c *fiber.Ctx) error {
	if h.cache == nil {
		return c.Status(503).JSON(fiber.Map{
			"error": "Leaderboard requires Redis",
			"code":  "ERR_NO_LEADERBOARD",
		})
	}

	entries, err := h.cache.Leaderboard(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		log.Error().Err(err).Msg("failed to read leaderboard")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch leaderboard",
			"code":  "ERR_CACHE",
		})
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

// Profile returns one contributor's points total and level.
func (h *LeaderboardHandler) Profile(c *fiber.Ctx) error {
	userID := c.Params("id")

	total, level, err := h.store.UserPoints(c.Context(), userID)
	if err != nil {
		log.Error().Str("user_id", userID).Err(err).Msg("failed to read profile")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch profile",
			"code":  "ERR_DB",
		})
	}

	return c.JSON(fiber.Map{
		"user_id":    userID,
		"points":     total,
		"level":      level,
		"level_name": points.LevelName(level),
	})
}

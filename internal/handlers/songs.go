package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/storage"
)

// SongsHandler serves the song catalog.
type SongsHandler struct {
	store *storage.Store
}

// NewSongsHandler creates a new songs handler
func NewSongsHandler(store *storage.Store) *SongsHandler {
	return &SongsHandler{store: store}
}

// List returns one page of songs filtered by status.
func (h *SongsHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	status := c.Query("status", storage.StatusPublished)

	songs, total, err := h.store.ListSongs(c.Context(), status, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list songs")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch songs",
			"code":  "ERR_DB",
		})
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return c.JSON(fiber.Map{
		"songs": songs,
		"pagination": fiber.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// Get returns one song by id.
func (h *SongsHandler) Get(c *fiber.Ctx) error {
	song, err := h.store.GetSong(c.Context(), c.Params("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"error": "Song not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get song")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch song",
			"code":  "ERR_DB",
		})
	}
	return c.JSON(song)
}

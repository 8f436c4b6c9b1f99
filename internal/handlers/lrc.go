package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/lrc"
	"github.com/lyricsync/lyricsync/internal/points"
	"github.com/lyricsync/lyricsync/internal/storage"
)

// LRCHandler serves and accepts synchronized lyric documents.
type LRCHandler struct {
	store *storage.Store
	cache *storage.Cache
}

// NewLRCHandler creates a new LRC handler. The cache may be nil.
func NewLRCHandler(store *storage.Store, cache *storage.Cache) *LRCHandler {
	return &LRCHandler{store: store, cache: cache}
}

// Get serves the latest document for a song as JSON, LRC or SRT.
// ?download=1 adds a save-as disposition for the text formats.
func (h *LRCHandler) Get(c *fiber.Ctx) error {
	songID := c.Params("songId")
	format := c.Query("format", "json")
	if format != "json" && format != "lrc" && format != "srt" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unknown format, expected json, lrc or srt",
			"code":  "ERR_BAD_FORMAT",
		})
	}

	if h.cache != nil {
		if payload, ok := h.cache.GetDocument(c.Context(), songID, format); ok {
			return h.send(c, songID, format, payload)
		}
	}

	doc, _, err := h.store.LoadDocument(c.Context(), songID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"error": "LRC not found for this song",
			"code":  "ERR_NOT_FOUND",
		})
	}
	if err != nil {
		log.Error().Str("song_id", songID).Err(err).Msg("failed to load document")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch LRC data",
			"code":  "ERR_DB",
		})
	}

	// Song metadata feeds the LRC header and the export tag block; a
	// missing song row only costs the header.
	if song, err := h.store.GetSong(c.Context(), songID); err == nil {
		doc.Metadata = lrc.Metadata{
			Title:           song.Title,
			Artist:          song.ArtistName,
			Album:           song.Album,
			DurationSeconds: song.DurationSeconds,
		}
	}

	payload, err := h.render(songID, format, doc)
	if err != nil {
		log.Error().Str("song_id", songID).Str("format", format).Err(err).Msg("failed to serialize document")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to serialize lyrics",
			"code":  "ERR_SERIALIZE",
		})
	}

	if h.cache != nil {
		h.cache.SetDocument(c.Context(), songID, format, payload)
	}
	return h.send(c, songID, format, payload)
}

func (h *LRCHandler) render(songID, format string, doc lrc.Document) (string, error) {
	switch format {
	case "lrc":
		return lrc.MarshalLRC(doc)
	case "srt":
		return lrc.MarshalSRT(doc)
	default:
		raw, err := json.Marshal(lrc.NewExport(songID, doc))
		return string(raw), err
	}
}

func (h *LRCHandler) send(c *fiber.Ctx, songID, format, payload string) error {
	if format == "json" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(payload)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	if c.QueryBool("download") {
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="%s.%s"`, songID, format))
	}
	return c.SendString(payload)
}

// saveRequest is the body accepted by Put.
type saveRequest struct {
	Lyrics []lrc.Line `json:"lyrics"`
	Source string     `json:"source"`
	UserID string     `json:"user_id"`
}

// Put stores a new document version for a song. Lines are stable-sorted by
// time on the way in so the persisted sequence is always monotonic.
func (h *LRCHandler) Put(c *fiber.Ctx) error {
	songID := c.Params("songId")

	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}
	if len(req.Lyrics) == 0 {
		return c.Status(422).JSON(fiber.Map{
			"error": lrc.ErrNoSyncedContent.Error(),
			"code":  "ERR_NO_CONTENT",
		})
	}
	for _, line := range req.Lyrics {
		if line.Time < 0 {
			return c.Status(400).JSON(fiber.Map{
				"error": "Line times must be non-negative",
				"code":  "ERR_NEGATIVE_TIME",
			})
		}
	}

	if _, err := h.store.GetSong(c.Context(), songID); errors.Is(err, storage.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{
			"error": "Song not found",
			"code":  "ERR_NOT_FOUND",
		})
	}

	source := req.Source
	switch source {
	case lrc.SourceAI, lrc.SourceManual, lrc.SourceHybrid, lrc.SourceLRCImport:
	case "":
		source = lrc.SourceManual
	default:
		return c.Status(400).JSON(fiber.Map{
			"error": "Unknown source tag",
			"code":  "ERR_BAD_SOURCE",
		})
	}

	lines := make([]lrc.Line, len(req.Lyrics))
	copy(lines, req.Lyrics)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Time < lines[j].Time })

	doc := lrc.Document{Lines: lines, Source: source}
	if err := h.store.SaveDocument(c.Context(), songID, doc); err != nil {
		log.Error().Str("song_id", songID).Err(err).Msg("failed to save document")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save synchronized lyrics",
			"code":  "ERR_DB",
		})
	}

	if h.cache != nil {
		h.cache.InvalidateDocument(c.Context(), songID)
	}

	resp := fiber.Map{"success": true, "song_id": songID}
	if req.UserID != "" {
		contrib, err := h.store.AddContribution(c.Context(), req.UserID, songID, points.TypeSync)
		if err != nil {
			log.Error().Str("user_id", req.UserID).Err(err).Msg("failed to record contribution")
		} else {
			if h.cache != nil {
				if err := h.cache.AddPoints(c.Context(), req.UserID, contrib.PointsEarned); err != nil {
					log.Warn().Err(err).Msg("failed to update leaderboard")
				}
			}
			resp["points_earned"] = contrib.PointsEarned
		}
	}
	return c.JSON(resp)
}

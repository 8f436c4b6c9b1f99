package handlers

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/queue"
	"github.com/lyricsync/lyricsync/internal/storage"
	"github.com/lyricsync/lyricsync/internal/types"
)

// youtubeURLRe accepts watch, short and embed YouTube URL forms.
var youtubeURLRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)[a-zA-Z0-9_-]{11}`)

// YouTubeHandler imports a song's audio from a YouTube video.
type YouTubeHandler struct {
	workerPool *queue.WorkerPool
	store      *storage.Store
	tempDir    string
}

// NewYouTubeHandler creates a new YouTube import handler
func NewYouTubeHandler(workerPool *queue.WorkerPool, store *storage.Store, tempDir string) *YouTubeHandler {
	return &YouTubeHandler{
		workerPool: workerPool,
		store:      store,
		tempDir:    tempDir,
	}
}

// YouTubeRequest represents the request body
type YouTubeRequest struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Lyrics string `json:"lyrics"`
	UserID string `json:"user_id"`
}

// Handle processes YouTube import requests
func (h *YouTubeHandler) Handle(c *fiber.Ctx) error {
	var req YouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.URL == "" || req.Title == "" || req.Artist == "" || req.Lyrics == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "URL, title, artist and lyrics are required",
			"code":  "ERR_MISSING_FIELDS",
		})
	}
	if !youtubeURLRe.MatchString(req.URL) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid YouTube URL",
			"code":  "ERR_INVALID_URL",
		})
	}

	songID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, songID+".mp3")

	song := &storage.Song{
		ID:          songID,
		Title:       req.Title,
		ArtistName:  req.Artist,
		Album:       req.Album,
		AudioPath:   tempPath,
		LyricsText:  req.Lyrics,
		Status:      storage.StatusProcessing,
		SubmittedBy: req.UserID,
	}
	if err := h.store.CreateSong(c.Context(), song); err != nil {
		log.Error().Err(err).Msg("failed to create song row")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create song",
			"code":  "ERR_DB",
		})
	}

	// The download can take minutes for long videos; run it off the request
	// path and enqueue ingest once the file is on disk.
	go func() {
		if err := h.downloadAudio(req.URL, tempPath); err != nil {
			log.Error().Str("song_id", songID).Str("url", req.URL).Err(err).
				Msg("youtube download failed")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if e := h.store.UpdateSongStatus(ctx, songID, storage.StatusRejected); e != nil {
				log.Error().Str("song_id", songID).Err(e).Msg("failed to mark song rejected")
			}
			return
		}

		job := queue.NewJob(songID, types.SourceYouTube, tempPath)
		job.Title = req.Title
		job.Artist = req.Artist
		job.Album = req.Album
		job.Lyrics = req.Lyrics
		job.SubmittedBy = req.UserID
		h.workerPool.EnqueueJob(job)
	}()

	return c.Status(202).JSON(fiber.Map{
		"song_id": songID,
		"status":  storage.StatusProcessing,
		"message": "YouTube import started (this may take a few minutes for long videos)",
	})
}

// downloadAudio extracts the audio track of a video to tempPath as mp3.
func (h *YouTubeHandler) downloadAudio(url, tempPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat("mp3").
		NoPlaylist().
		Output(tempPath)

	_, err := dl.Run(ctx, url)
	return err
}

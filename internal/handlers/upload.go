package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/ingest"
	"github.com/lyricsync/lyricsync/internal/queue"
	"github.com/lyricsync/lyricsync/internal/storage"
	"github.com/lyricsync/lyricsync/internal/types"
)

// UploadHandler handles audio file uploads with their lyrics.
type UploadHandler struct {
	workerPool *queue.WorkerPool
	store      *storage.Store
	tempDir    string
	maxSizeMB  int
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(workerPool *queue.WorkerPool, store *storage.Store, tempDir string, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		workerPool: workerPool,
		store:      store,
		tempDir:    tempDir,
		maxSizeMB:  maxSizeMB,
	}
}

// Handle processes the upload request
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Audio file is required",
			"code":  "ERR_NO_FILE",
		})
	}

	title := c.FormValue("title")
	artist := c.FormValue("artist")
	lyrics := c.FormValue("lyrics")
	if title == "" || artist == "" || lyrics == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Title, artist and lyrics are required",
			"code":  "ERR_MISSING_FIELDS",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(413).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !ingest.ValidateAudioFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported audio format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	songID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, songID+filepath.Ext(file.Filename))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Error().Err(err).Msg("failed to save uploaded file")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	song := &storage.Song{
		ID:          songID,
		Title:       title,
		ArtistName:  artist,
		Album:       c.FormValue("album"),
		AudioPath:   tempPath,
		LyricsText:  lyrics,
		Status:      storage.StatusProcessing,
		SubmittedBy: c.FormValue("user_id"),
	}
	if err := h.store.CreateSong(c.Context(), song); err != nil {
		log.Error().Err(err).Msg("failed to create song row")
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create song",
			"code":  "ERR_DB",
		})
	}

	job := queue.NewJob(songID, types.SourceUpload, tempPath)
	job.Title = title
	job.Artist = artist
	job.Album = song.Album
	job.Lyrics = lyrics
	job.SubmittedBy = song.SubmittedBy
	h.workerPool.EnqueueJob(job)

	return c.Status(202).JSON(fiber.Map{
		"song_id": songID,
		"status":  storage.StatusProcessing,
		"message": "Song uploaded, processing started",
	})
}

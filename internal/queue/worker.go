package queue

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/ingest"
	"github.com/lyricsync/lyricsync/internal/lrc"
	"github.com/lyricsync/lyricsync/internal/storage"
	"github.com/lyricsync/lyricsync/internal/types"
)

// WorkerPool manages a pool of workers processing audio ingest jobs
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	store       *storage.Store
	audioStore  *storage.AudioStore
	cache       *storage.Cache
}

// NewWorkerPool creates a new worker pool. The cache may be nil when Redis
// is not configured.
func NewWorkerPool(workerCount int, store *storage.Store, audioStore *storage.AudioStore, cache *storage.Cache) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100),
		workerCount: workerCount,
		store:       store,
		audioStore:  audioStore,
		cache:       cache,
	}
}

// Start initializes all workers
func (wp *WorkerPool) Start() {
	log.Info().Int("workers", wp.workerCount).Msg("starting ingest worker pool")
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// EnqueueJob adds a job to the queue
func (wp *WorkerPool) EnqueueJob(job *Job) {
	job.Status = types.StatusQueued
	job.CreatedAt = time.Now()
	wp.jobQueue <- job
	log.Info().Str("song_id", job.SongID).Str("source", job.SourceType).Msg("ingest job enqueued")
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Int("worker", id).Str("song_id", job.SongID).
						Interface("panic", r).Bytes("stack", debug.Stack()).
						Msg("worker panic")
					job.Status = types.StatusFailed
					job.Error = fmt.Errorf("worker panic: %v", r)
					wp.cleanupTempFile(job.FilePath)
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob runs the ingest pipeline: probe tags, place the audio file,
// detect a pre-synced LRC submission and finalize the song row.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Info().Int("worker", workerID).Str("song_id", job.SongID).Msg("processing ingest")
	job.Status = types.StatusProcessing

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	song, err := wp.store.GetSong(ctx, job.SongID)
	if err != nil {
		wp.fail(job, fmt.Errorf("song row missing: %w", err))
		return
	}

	// Embedded tags fill whatever the submitter left blank. A file with no
	// readable tags is fine.
	if tags, err := ingest.ProbeTags(job.FilePath); err == nil {
		if song.Title == "" {
			song.Title = tags.Title
		}
		if song.ArtistName == "" {
			song.ArtistName = tags.Artist
		}
		if song.Album == "" {
			song.Album = tags.Album
		}
	} else {
		log.Debug().Str("song_id", job.SongID).Err(err).Msg("no readable audio tags")
	}

	finalPath, err := wp.audioStore.Place(job.FilePath, job.SongID)
	if err != nil {
		wp.fail(job, fmt.Errorf("audio placement failed: %w", err))
		return
	}
	song.AudioPath = finalPath

	// An uploader may paste an LRC file into the lyrics field. Store the
	// structured document and keep only the plain transcript on the song.
	song.LyricsText = job.Lyrics
	if lrc.IsSynced(job.Lyrics) {
		doc := lrc.ParseDocument(job.Lyrics)
		if err := wp.store.SaveDocument(ctx, job.SongID, doc); err != nil {
			log.Error().Str("song_id", job.SongID).Err(err).Msg("failed to save imported LRC")
		} else {
			song.LyricsText = lrc.PlainText(job.Lyrics)
			if wp.cache != nil {
				wp.cache.InvalidateDocument(ctx, job.SongID)
			}
			log.Info().Str("song_id", job.SongID).Int("lines", len(doc.Lines)).
				Msg("imported pre-synced LRC from upload")
		}
	}

	song.Status = storage.StatusPendingSync
	if err := wp.store.FinishIngest(ctx, song); err != nil {
		wp.fail(job, fmt.Errorf("failed to finalize song: %w", err))
		return
	}

	job.Status = types.StatusCompleted
	log.Info().Int("worker", workerID).Str("song_id", job.SongID).
		Str("audio", finalPath).Msg("ingest completed")
}

func (wp *WorkerPool) fail(job *Job, err error) {
	job.Status = types.StatusFailed
	job.Error = err
	log.Error().Str("song_id", job.SongID).Err(err).Msg("ingest failed")
	wp.cleanupTempFile(job.FilePath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if e := wp.store.UpdateSongStatus(ctx, job.SongID, storage.StatusRejected); e != nil {
		log.Error().Str("song_id", job.SongID).Err(e).Msg("failed to mark song rejected")
	}
}

// cleanupTempFile removes a temporary file
func (wp *WorkerPool) cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Str("path", filePath).Err(err).Msg("failed to cleanup temp file")
	}
}

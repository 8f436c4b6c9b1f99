// Package cleanup removes stale temp files left behind by abandoned uploads
// and imports.
package cleanup

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler handles cleanup of temporary files
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a new cleanup scheduler
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the cleanup scheduler
func (s *Scheduler) Start() {
	// Run initial cleanup on startup
	s.cleanOldFiles()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.cleanOldFiles()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Info().Int("interval_minutes", s.intervalMinutes).Int("max_age_hours", s.maxAgeHours).
		Msg("cleanup scheduler started")
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Info().Msg("cleanup scheduler stopped")
}

// cleanOldFiles removes files older than maxAgeHours from temp directory
func (s *Scheduler) cleanOldFiles() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var deletedCount int
	var deletedSize int64

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}
		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age > maxAge {
			size := info.Size()
			if err := os.Remove(path); err != nil {
				log.Warn().Str("path", path).Err(err).Msg("failed to delete old temp file")
			} else {
				deletedCount++
				deletedSize += size
			}
		}

		return nil
	})

	if err != nil {
		log.Error().Err(err).Msg("error during temp cleanup")
	}

	if deletedCount > 0 {
		log.Info().Int("files", deletedCount).
			Float64("freed_mb", float64(deletedSize)/(1024*1024)).
			Msg("temp cleanup complete")
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	return os.MkdirAll(tempDir, 0755)
}

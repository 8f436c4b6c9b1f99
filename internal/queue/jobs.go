package queue

import (
	"time"

	"github.com/lyricsync/lyricsync/internal/types"
)

// Job represents one audio ingest: a freshly uploaded or imported file that
// still needs tag probing, placement and its song row finalized.
type Job struct {
	SongID      string
	Title       string
	Artist      string
	Album       string
	Lyrics      string
	SourceType  string
	FilePath    string
	SubmittedBy string
	Status      string
	Error       error
	CreatedAt   time.Time
}

// NewJob creates a new ingest job with default values
func NewJob(songID, sourceType, filePath string) *Job {
	return &Job{
		SongID:     songID,
		SourceType: sourceType,
		FilePath:   filePath,
		Status:     types.StatusQueued,
		CreatedAt:  time.Now(),
	}
}

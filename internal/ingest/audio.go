// Package ingest validates and probes audio files entering the system.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// ValidateAudioFormat checks if the file format is supported
func ValidateAudioFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".opus"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// TagInfo is the embedded metadata read from an audio file, used to prefill
// song fields the uploader left blank.
type TagInfo struct {
	Title  string
	Artist string
	Album  string
}

// ProbeTags reads ID3/MP4/Vorbis tags from an audio file. Files without
// readable tags return an error; callers treat that as "nothing to prefill",
// not a rejection.
func ProbeTags(path string) (TagInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TagInfo{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return TagInfo{}, fmt.Errorf("failed to read audio tags: %w", err)
	}

	return TagInfo{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
	}, nil
}

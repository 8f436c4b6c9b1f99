package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AudioStore places uploaded and imported audio files on the local
// filesystem, one file per song.
type AudioStore struct {
	audioDir string
}

// NewAudioStore creates the audio directory when missing.
func NewAudioStore(audioDir string) (*AudioStore, error) {
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &AudioStore{audioDir: audioDir}, nil
}

// Place moves a temp file into the audio directory under the song's id,
// keeping the original extension. Falls back to copy+remove when the temp
// directory is on another filesystem.
func (as *AudioStore) Place(tempPath, songID string) (string, error) {
	finalPath := filepath.Join(as.audioDir, songID+filepath.Ext(tempPath))

	if err := os.Rename(tempPath, finalPath); err == nil {
		return finalPath, nil
	}

	src, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to open temp audio: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(finalPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(finalPath)
		return "", fmt.Errorf("failed to copy audio file: %w", err)
	}
	os.Remove(tempPath)
	return finalPath, nil
}

// Remove deletes a stored audio file. Missing files are not an error.
func (as *AudioStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}
	return nil
}

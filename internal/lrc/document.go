// Package lrc implements the LRC lyric format: timestamp encoding, document
// parsing, serialization to LRC/SRT/JSON and playback line resolution.
package lrc

import "errors"

// ErrNoSyncedContent is reported by callers when a non-empty input yields no
// synchronizable lines at all. The parser itself never fails on malformed
// lines; it skips them.
var ErrNoSyncedContent = errors.New("no synchronizable content found")

// Source identifies how a synced document was produced.
const (
	SourceAI        = "ai"
	SourceManual    = "manual"
	SourceHybrid    = "hybrid"
	SourceLRCImport = "lrc_import"
)

// Line is a single lyric line bound to its onset time in seconds.
type Line struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

// Metadata carries the optional song tags emitted in an LRC header.
// DurationSeconds, when known, produces the [length:mm:ss] tag.
type Metadata struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds float64
}

// empty reports whether no header tag would be emitted for m.
func (m Metadata) empty() bool {
	return m.Title == "" && m.Artist == "" && m.Album == "" && m.DurationSeconds <= 0
}

// Document is an ordered sequence of synced lines plus optional metadata.
// Lines are kept sorted non-decreasing by time.
type Document struct {
	Lines    []Line
	Metadata Metadata
	Source   string
}

// Export is the JSON interchange shape served by the LRC API.
type Export struct {
	SongID   string          `json:"song_id"`
	Format   string          `json:"format"`
	Lyrics   []Line          `json:"lyrics"`
	Metadata *ExportMetadata `json:"metadata,omitempty"`
}

// ExportMetadata tags an export with its provenance.
type ExportMetadata struct {
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// NewExport builds the JSON representation of doc for the given song.
func NewExport(songID string, doc Document) Export {
	exp := Export{
		SongID: songID,
		Format: "json",
		Lyrics: doc.Lines,
	}
	if exp.Lyrics == nil {
		exp.Lyrics = []Line{}
	}
	if doc.Source != "" || !doc.Metadata.empty() {
		exp.Metadata = &ExportMetadata{
			Source: doc.Source,
			Title:  doc.Metadata.Title,
			Artist: doc.Metadata.Artist,
			Album:  doc.Metadata.Album,
		}
	}
	return exp
}
